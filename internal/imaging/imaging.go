// Package imaging normalises uploaded photos of items and claim proofs.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/erazemk/najdeno/internal/apperr"
)

// Profile controls how an upload is normalised.
type Profile struct {
	Name         string
	MaxBytes     int64
	MaxDimension int
	Quality      int
}

// Upload profiles. Proof photos keep more detail since an administrator
// compares them against the item in hand.
var (
	ItemPhoto  = Profile{Name: "item", MaxBytes: 10 << 20, MaxDimension: 1024, Quality: 85}
	ClaimProof = Profile{Name: "proof", MaxBytes: 15 << 20, MaxDimension: 2048, Quality: 90}
)

// ProfileByName returns the profile with the given name.
func ProfileByName(name string) (Profile, bool) {
	switch name {
	case ItemPhoto.Name, "":
		return ItemPhoto, true
	case ClaimProof.Name:
		return ClaimProof, true
	}
	return Profile{}, false
}

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result is a normalised JPEG.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Process sniffs the upload's real format, rejects anything that is not a
// JPEG or PNG within the profile's size limit, shrinks it to fit
// MaxDimension and re-encodes it as JPEG. Rejections are validation errors.
func Process(r io.Reader, p Profile) (*Result, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > p.MaxBytes {
		return nil, apperr.Validation("image exceeds %d MiB", p.MaxBytes>>20)
	}

	// Client headers are not trusted.
	detected := http.DetectContentType(data)
	if !allowedMIME[detected] {
		return nil, apperr.Validation("unsupported image format %s, only JPEG and PNG are accepted", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "corrupt image", err)
	}

	img = fit(img, p.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.Quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:   buf.Bytes(),
		MIME:   "image/jpeg",
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// fit scales img down with Catmull-Rom so its longer side is at most
// maxDim. Smaller images are returned unchanged.
func fit(img image.Image, maxDim int) image.Image {
	src := img.Bounds()
	long := max(src.Dx(), src.Dy())
	if long <= maxDim {
		return img
	}

	w := max(1, src.Dx()*maxDim/long)
	h := max(1, src.Dy()*maxDim/long)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
