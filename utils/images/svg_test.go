package images

import "testing"

func TestRasterizeSVG(t *testing.T) {
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 50"><rect width="100" height="50"/></svg>`)

	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"intrinsic", 0, 0, 100, 50},
		{"scale_by_width", 200, 0, 200, 100},
		{"scale_by_height", 0, 200, 400, 200},
		{"fit_box", 150, 150, 150, 75},
		{"clamped", 100000, 0, 4096, 2048},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := RasterizeSVG(svg, tt.w, tt.h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds().Dx() != tt.wantW || img.Bounds().Dy() != tt.wantH {
				t.Fatalf("unexpected bounds: %v", img.Bounds())
			}
		})
	}
}

func TestIsSVG(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{`<svg xmlns="http://www.w3.org/2000/svg"/>`, true},
		{"\xef\xbb\xbf<?xml version=\"1.0\"?>\n<SVG></SVG>", true},
		{`<html><body/></html>`, false},
		{"\x89PNG\r\n", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSVG([]byte(tt.in)); got != tt.want {
			t.Errorf("IsSVG(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
