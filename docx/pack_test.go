package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"wtpl/model"
)

func readPart(t *testing.T, files []*zip.File, name string) *etree.Document {
	t.Helper()
	for _, f := range files {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return doc
	}
	t.Fatalf("part %s not found", name)
	return nil
}

func packTemplate(t *testing.T) *Document {
	t.Helper()
	img := model.NewBlock(model.BlockImage, 0)
	img.Content = model.ImageContent{Src: pngDataURI(t, 10, 10), Alignment: model.ImageCenter}
	tbl := model.NewBlock(model.BlockTable, 0)
	return build(t, testTemplate(textBlock("<p>Hello<br>world</p>"), img, tbl))
}

func TestWrite(t *testing.T) {
	doc := packTemplate(t)

	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v", err)
	}

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"[Content_Types].xml", "_rels/.rels", "docProps/core.xml", "docProps/app.xml",
		"word/document.xml", "word/styles.xml", "word/settings.xml",
		"word/_rels/document.xml.rels", "word/media/image1.png",
	} {
		if !names[want] {
			t.Errorf("missing part %s", want)
		}
	}

	d := readPart(t, zr.File, "word/document.xml")
	var texts []string
	for _, el := range d.FindElements("//w:t") {
		texts = append(texts, el.Text())
	}
	if len(texts) < 2 || texts[0] != "Hello" || texts[1] != "world" {
		t.Errorf("unexpected text runs %v", texts)
	}
	if len(d.FindElements("//w:p/w:r/w:br")) != 1 {
		t.Error("expected one line break")
	}
	blip := d.FindElement("//a:blip")
	if blip == nil || blip.SelectAttrValue("r:embed", "") != "rIdImage1" {
		t.Error("picture does not reference media relationship")
	}
	if d.FindElement("//w:tbl/w:tblGrid") == nil || len(d.FindElements("//w:tbl/w:tr")) != 2 {
		t.Error("unexpected table markup")
	}
	sz := d.FindElement("//w:body/w:sectPr/w:pgSz")
	if sz == nil || sz.SelectAttrValue("w:w", "") != "11900" {
		t.Error("unexpected section properties")
	}

	rels := readPart(t, zr.File, "word/_rels/document.xml.rels")
	if el := rels.FindElement("//Relationship[@Id='rIdImage1']"); el == nil || el.SelectAttrValue("Target", "") != "media/image1.png" {
		t.Error("image relationship missing")
	}
	ct := readPart(t, zr.File, "[Content_Types].xml")
	if ct.FindElement("//Default[@Extension='png']") == nil {
		t.Error("png content type missing")
	}
	core := readPart(t, zr.File, "docProps/core.xml")
	if el := core.FindElement("//dc:creator"); el == nil || el.Text() != "wtpl" {
		t.Error("creator missing")
	}
	styles := readPart(t, zr.File, "word/styles.xml")
	if styles.FindElement("//w:style[@w:styleId='Heading6']") == nil {
		t.Error("heading styles missing")
	}
}

func TestWriteFile(t *testing.T) {
	doc := packTemplate(t)

	for _, fixZip := range []bool{false, true} {
		dir := t.TempDir()
		out := filepath.Join(dir, "sub", "out.docx")
		if err := WriteFile(context.Background(), doc, out, fixZip, zaptest.NewLogger(t)); err != nil {
			t.Fatalf("WriteFile(fixZip=%v) error = %v", fixZip, err)
		}
		zr, err := zip.OpenReader(out)
		if err != nil {
			t.Fatalf("open result (fixZip=%v): %v", fixZip, err)
		}
		if len(zr.File) != 9 {
			t.Errorf("fixZip=%v: expected 9 parts, got %d", fixZip, len(zr.File))
		}
		readPart(t, zr.File, "word/document.xml")
		zr.Close()

		entries, err := os.ReadDir(filepath.Dir(out))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 1 {
			t.Errorf("fixZip=%v: temporary files left behind: %v", fixZip, entries)
		}
	}
}

func TestWriteFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := filepath.Join(t.TempDir(), "out.docx")
	if err := WriteFile(ctx, &Document{}, out, false, zaptest.NewLogger(t)); err == nil {
		t.Error("expected context error")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output must not be created")
	}
}
