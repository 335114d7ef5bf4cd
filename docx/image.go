package docx

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"wtpl/config"
	"wtpl/css"
	"wtpl/model"
	"wtpl/units"
)

// FitImage returns picture size for image block. Auto aligned pictures
// are fitted into page content width (or max width when smaller) and
// keep aspect ratio of declared or, failing that, natural size.
func FitImage(img model.ImageContent, page model.PageSettings, naturalW, naturalH int, cfg *config.ImagesConfig) (w, h float64) {
	if img.Alignment != model.ImageAuto {
		return deref(img.Width, cfg.DefaultWidth), deref(img.Height, cfg.DefaultHeight)
	}

	w = page.ContentWidth()
	if img.MaxWidth != nil && *img.MaxWidth > 0 {
		w = math.Min(*img.MaxWidth, w)
	}
	switch {
	case deref(img.Width, 0) > 0 && deref(img.Height, 0) > 0:
		h = math.Round(*img.Height * w / *img.Width)
	case naturalW > 0 && naturalH > 0:
		h = math.Round(float64(naturalH) * w / float64(naturalW))
	default:
		h = deref(img.MaxHeight, cfg.AutoFallbackHeight)
	}
	return w, h
}

func deref(v *float64, def float64) float64 {
	if v == nil || *v == 0 {
		return def
	}
	return *v
}

func imageAlignment(a model.ImageAlignment) string {
	switch a {
	case model.ImageLeft:
		return "left"
	case model.ImageRight:
		return "right"
	default:
		return "center"
	}
}

func (b *builder) image(ctx context.Context, block *model.Block, img model.ImageContent) ([]Element, error) {
	if strings.TrimSpace(img.Src) == "" {
		b.log.Debug("Image block without source, skipping", zap.String("id", block.ID))
		return nil, nil
	}

	loaded, err := b.images.Load(ctx, img.Src)
	if err != nil {
		return nil, fmt.Errorf("unable to load image: %w", err)
	}

	w, h := FitImage(img, b.t.Format.Page, loaded.Width, loaded.Height, &b.cfg.Images)
	media := b.addMedia(loaded)
	b.pictures++

	drawing := &Drawing{
		Media: media,
		ID:    b.pictures,
		Name:  fmt.Sprintf("Picture %d", b.pictures),
		Descr: orDefault(img.Alt, img.Title),
		CX:    units.EMU(w),
		CY:    units.EMU(h),
	}
	if img.Border != nil && img.Border.Enabled {
		drawing.Outline = &Outline{
			Width: units.EMU(orDefaultNum(img.Border.Width, 1)),
			Color: css.HexNoHash(css.NormalizeColor(img.Border.Color)),
			Dash:  outlineDash(img.Border.Style),
		}
	}

	align := imageAlignment(img.Alignment)
	res := []Element{&Paragraph{
		Alignment: align,
		Spacing:   &Spacing{After: 240},
		Runs:      []*Run{{Drawing: drawing}},
	}}

	if caption := strings.TrimSpace(img.Caption); caption != "" {
		res = append(res, &Paragraph{
			Alignment: align,
			Spacing:   &Spacing{After: 240},
			Runs: []*Run{{
				Text:   caption,
				Font:   b.doc.DefaultFont,
				Size:   20,
				Color:  "666666",
				Italic: true,
			}},
		})
	}
	return res, nil
}

func outlineDash(style string) string {
	switch style {
	case "dashed":
		return "dash"
	case "dotted":
		return "sysDot"
	default:
		return "solid"
	}
}

func (b *builder) addMedia(img *Image) *Media {
	n := len(b.doc.Media) + 1
	m := &Media{
		RelID:       fmt.Sprintf("rIdImage%d", n),
		Name:        fmt.Sprintf("image%d.%s", n, img.Ext),
		ContentType: img.ContentType,
		Data:        img.Data,
	}
	b.doc.Media = append(b.doc.Media, m)
	return m
}
