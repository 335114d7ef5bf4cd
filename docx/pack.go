package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/beevik/etree"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"wtpl/misc"
)

const (
	relsNS      = "http://schemas.openxmlformats.org/package/2006/relationships"
	relTypeBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	ctRels     = "application/vnd.openxmlformats-package.relationships+xml"
	ctDocument = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles   = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctSettings = "application/vnd.openxmlformats-officedocument.wordprocessingml.settings+xml"
	ctCore     = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp      = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

type part struct {
	name string
	doc  *etree.Document
}

// Write packs document into .docx archive.
func Write(w io.Writer, d *Document) error {
	zw := zip.NewWriter(w)

	parts := []part{
		{"[Content_Types].xml", contentTypesXML(d)},
		{"_rels/.rels", packageRelsXML()},
		{"docProps/core.xml", coreXML(d)},
		{"docProps/app.xml", appXML()},
		{"word/document.xml", DocumentXML(d)},
		{"word/styles.xml", stylesXML(d)},
		{"word/settings.xml", settingsXML()},
		{"word/_rels/document.xml.rels", documentRelsXML(d)},
	}
	for _, p := range parts {
		if err := writeXMLToZip(zw, p.name, p.doc, d.Created); err != nil {
			return fmt.Errorf("unable to write %s: %w", p.name, err)
		}
	}
	for _, m := range d.Media {
		if err := writeDataToZip(zw, "word/media/"+m.Name, m.Data, d.Created); err != nil {
			return fmt.Errorf("unable to write image %s: %w", m.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	return nil
}

// WriteFile writes document to outputPath through a temporary file in the
// same directory. With fixZip set archive is rewritten without data
// descriptors.
func WriteFile(ctx context.Context, d *Document, outputPath string, fixZip bool, log *zap.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Info("Writing document", zap.String("output", outputPath), zap.Int("media", len(d.Media)))

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+misc.GetAppName()+"-*.docx")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	tmpName := f.Name()
	// clean temporary file
	defer os.Remove(tmpName)
	defer f.Close()

	if err := Write(f, d); err != nil {
		return err
	}
	// make sure buffers are flushed before continuing
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}

	if fixZip {
		return copyZipWithoutDataDescriptors(tmpName, outputPath)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("unable to move output file: %w", err)
	}
	return nil
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document, modified time.Time) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes(), modified)
}

func writeDataToZip(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyZipWithoutDataDescriptors(from, to string) error {

	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("unable to finalize target file (%s): %w", to, err)
	}
	return out.Close()
}

func contentTypesXML(d *Document) *etree.Document {
	doc := newXMLDocument()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", "http://schemas.openxmlformats.org/package/2006/content-types")

	def := func(ext, ct string) {
		el := types.CreateElement("Default")
		el.CreateAttr("Extension", ext)
		el.CreateAttr("ContentType", ct)
	}
	def("rels", ctRels)
	def("xml", "application/xml")

	exts := make(map[string]string)
	for _, m := range d.Media {
		exts[strings.TrimPrefix(filepath.Ext(m.Name), ".")] = m.ContentType
	}
	keys := make([]string, 0, len(exts))
	for k := range exts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		def(k, exts[k])
	}

	override := func(name, ct string) {
		el := types.CreateElement("Override")
		el.CreateAttr("PartName", name)
		el.CreateAttr("ContentType", ct)
	}
	override("/word/document.xml", ctDocument)
	override("/word/styles.xml", ctStyles)
	override("/word/settings.xml", ctSettings)
	override("/docProps/core.xml", ctCore)
	override("/docProps/app.xml", ctApp)
	return doc
}

func relationships() (*etree.Document, func(id, typ, target string)) {
	doc := newXMLDocument()
	rels := doc.CreateElement("Relationships")
	rels.CreateAttr("xmlns", relsNS)
	return doc, func(id, typ, target string) {
		el := rels.CreateElement("Relationship")
		el.CreateAttr("Id", id)
		el.CreateAttr("Type", typ)
		el.CreateAttr("Target", target)
	}
}

func packageRelsXML() *etree.Document {
	doc, add := relationships()
	add("rId1", relTypeBase+"officeDocument", "word/document.xml")
	add("rId2", "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", "docProps/core.xml")
	add("rId3", relTypeBase+"extended-properties", "docProps/app.xml")
	return doc
}

func documentRelsXML(d *Document) *etree.Document {
	doc, add := relationships()
	add("rId1", relTypeBase+"styles", "styles.xml")
	add("rId2", relTypeBase+"settings", "settings.xml")
	for _, m := range d.Media {
		add(m.RelID, relTypeBase+"image", "media/"+m.Name)
	}
	return doc
}

func coreXML(d *Document) *etree.Document {
	doc := newXMLDocument()
	cp := doc.CreateElement("cp:coreProperties")
	cp.CreateAttr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	cp.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	cp.CreateAttr("xmlns:dcterms", "http://purl.org/dc/terms/")
	cp.CreateAttr("xmlns:dcmitype", "http://purl.org/dc/dcmitype/")
	cp.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	cp.CreateElement("dc:title").SetText(d.Title)
	if d.Description != "" {
		cp.CreateElement("dc:description").SetText(d.Description)
	}
	cp.CreateElement("dc:creator").SetText(d.Creator)
	cp.CreateElement("cp:lastModifiedBy").SetText(d.Creator)

	stamp := d.Created.UTC().Format(time.RFC3339)
	for _, tag := range []string{"dcterms:created", "dcterms:modified"} {
		el := cp.CreateElement(tag)
		el.CreateAttr("xsi:type", "dcterms:W3CDTF")
		el.SetText(stamp)
	}
	return doc
}

func appXML() *etree.Document {
	doc := newXMLDocument()
	props := doc.CreateElement("Properties")
	props.CreateAttr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	props.CreateAttr("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")
	props.CreateElement("Application").SetText(misc.GetAppName())
	return doc
}

func settingsXML() *etree.Document {
	doc := newXMLDocument()
	settings := doc.CreateElement("w:settings")
	settings.CreateAttr("xmlns:w", nsW)
	val(settings, "w:defaultTabStop", "720")
	val(settings, "w:characterSpacingControl", "doNotCompress")
	cs := settings.CreateElement("w:compat").CreateElement("w:compatSetting")
	cs.CreateAttr("w:name", "compatibilityMode")
	cs.CreateAttr("w:uri", "http://schemas.microsoft.com/office/word")
	cs.CreateAttr("w:val", "15")
	return doc
}

func stylesXML(d *Document) *etree.Document {
	doc := newXMLDocument()
	styles := doc.CreateElement("w:styles")
	styles.CreateAttr("xmlns:w", nsW)

	rpr := styles.CreateElement("w:docDefaults").CreateElement("w:rPrDefault").CreateElement("w:rPr")
	fonts := rpr.CreateElement("w:rFonts")
	for _, a := range []string{"w:ascii", "w:hAnsi", "w:eastAsia", "w:cs"} {
		fonts.CreateAttr(a, d.DefaultFont)
	}
	val(rpr, "w:sz", itoa(d.DefaultSize))
	val(rpr, "w:szCs", itoa(d.DefaultSize))
	lang := val(rpr, "w:lang", "en-US")
	lang.CreateAttr("w:eastAsia", "zh-CN")

	normal := styles.CreateElement("w:style")
	normal.CreateAttr("w:type", "paragraph")
	normal.CreateAttr("w:default", "1")
	normal.CreateAttr("w:styleId", "Normal")
	val(normal, "w:name", "Normal")
	normal.CreateElement("w:qFormat")

	for level := 1; level <= 6; level++ {
		st := styles.CreateElement("w:style")
		st.CreateAttr("w:type", "paragraph")
		st.CreateAttr("w:styleId", fmt.Sprintf("Heading%d", level))
		val(st, "w:name", fmt.Sprintf("heading %d", level))
		val(st, "w:basedOn", "Normal")
		val(st, "w:next", "Normal")
		st.CreateElement("w:qFormat")
		ppr := st.CreateElement("w:pPr")
		ppr.CreateElement("w:keepNext")
		val(ppr, "w:outlineLvl", itoa(level-1))
	}

	tbl := styles.CreateElement("w:style")
	tbl.CreateAttr("w:type", "table")
	tbl.CreateAttr("w:default", "1")
	tbl.CreateAttr("w:styleId", "TableNormal")
	val(tbl, "w:name", "Normal Table")
	writeMargins(tbl.CreateElement("w:tblPr"), "w:tblCellMar", &Margins{Left: 108, Right: 108})
	return doc
}
