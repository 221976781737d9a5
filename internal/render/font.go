package render

import (
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
)

const (
	fontSourceGoMono    = "gomono"
	fontSourceBasicFont = "basicfont"
	fontDPI             = 72
)

// loadFace tries the configured font file, then the embedded Go Mono face,
// then the fixed 7x13 bitmap face.
func loadFace(path string, size float64) (font.Face, string) {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		if data, err := os.ReadFile(trimmed); err == nil {
			if face, err := parseFace(data, size); err == nil {
				return face, trimmed
			}
		}
	}
	if face, err := parseFace(gomono.TTF, size); err == nil {
		return face, fontSourceGoMono
	}
	return basicfont.Face7x13, fontSourceBasicFont
}

func parseFace(data []byte, size float64) (font.Face, error) {
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     fontDPI,
		Hinting: font.HintingFull,
	})
}
