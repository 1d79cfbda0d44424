package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

/* =======================================================================
   Certificate image normalisation: decode jpeg/png/webp, downscale, re-encode webp
======================================================================= */

type WebPOptions struct {
	MaxW    int
	MaxH    int
	Quality float32
}

func envInt(key string, def int) int {
	if v := getEnv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float32) float32 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f > 0 {
			return float32(f)
		}
	}
	return def
}

func DefaultWebPOptions() WebPOptions {
	return WebPOptions{
		MaxW:    envInt("IMAGE_WEBP_MAX_W", 2400),
		MaxH:    envInt("IMAGE_WEBP_MAX_H", 2400),
		Quality: envFloat("IMAGE_WEBP_QUALITY", 85),
	}
}

var errUnsupportedImage = fmt.Errorf("unsupported image format")

func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	switch {
	case strings.Contains(ct, "jpeg"):
		return jpeg.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "png"):
		return png.Decode(bytes.NewReader(all))
	case strings.Contains(ct, "webp"):
		return webp.Decode(bytes.NewReader(all))
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return jpeg.Decode(bytes.NewReader(all))
	case ".png":
		return png.Decode(bytes.NewReader(all))
	case ".webp":
		return webp.Decode(bytes.NewReader(all))
	}
	return nil, errUnsupportedImage
}

// Keep aspect ratio; CatmullRom for quality.
func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW <= 0 || w <= maxW) && (maxH <= 0 || h <= maxH) {
		return src
	}
	scale := 1.0
	if maxW > 0 {
		scale = math.Min(scale, float64(maxW)/float64(w))
	}
	if maxH > 0 {
		scale = math.Min(scale, float64(maxH)/float64(h))
	}
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// NormalizeImage re-encodes raster images as webp. Anything that is not a
// decodable raster (PDF scans, for instance) is returned unchanged with its
// own extension and sniffed content type.
func NormalizeImage(data []byte, filename string, opt WebPOptions) (out []byte, ext, contentType string, err error) {
	img, derr := decodeImage(data, filename)
	if derr != nil {
		ext = strings.ToLower(filepath.Ext(filename))
		return data, ext, DetectContentType(data, filename), nil
	}
	img = downscaleIfNeeded(img, opt.MaxW, opt.MaxH)

	q := opt.Quality
	if q <= 0 {
		q = 85
	}
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, "", "", fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), ".webp", "image/webp", nil
}

func DetectContentType(data []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	case ".svg":
		return "image/svg+xml"
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if len(head) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(head)
}
