// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package document lays out the signed document: the message as a
// paragraph and, at the bottom of the first page, a framed caption next to
// the QR code of the signed message.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points.
const (
	inch         = 72.0
	margin       = inch
	titleY       = 108.0
	bodyTopFirst = margin + 2*inch
	footerX      = inch
	footerY      = 0.75 * inch

	frameX       = 100.0
	frameHeight  = 200.0
	framePadding = 6.0
	spacer       = 20.0
	imageXPad    = 3.0

	titleSize   = 16.0
	bodySize    = 12.0
	bodyLeading = 14.4
	captionSize = 10.0
	footerSize  = 9.0

	qrImageName = "qrcode"
)

// ErrNoImage is returned when the layout carries no QR image.
var ErrNoImage = errors.New("document: no QR image")

// Layout is everything the composer draws.
type Layout struct {
	Title   string
	Body    string
	Caption string
	// QRPNG is the QR code image, drawn ImageSize x ImageSize points.
	QRPNG     []byte
	ImageSize float64
	// Compress deflates page content streams.
	Compress bool
}

// Rect is a rectangle in points, measured from the top-left page corner.
type Rect struct {
	X, Y, W, H float64
}

// Rendered describes the produced document.
type Rendered struct {
	Pages int
	// QRRect is where the QR image was placed on page one.
	QRRect Rect
	// Frame is the bordered box at the bottom of page one.
	Frame Rect
}

// WriteFile composes the document into path.
func WriteFile(path string, l Layout) (r *Rendered, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return Compose(f, l)
}

// Compose renders l as an A4 PDF into w.
func Compose(w io.Writer, l Layout) (*Rendered, error) {
	if len(l.QRPNG) == 0 {
		return nil, ErrNoImage
	}
	if l.ImageSize <= 0 {
		return nil, fmt.Errorf("document: image size must be positive, got %v", l.ImageSize)
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(l.Compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle(l.Title, true)
	pdf.SetCreator("qrsign", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()

	pdf.RegisterImageOptionsReader(qrImageName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(l.QRPNG))

	out := &Rendered{}
	pdf.SetHeaderFuncMode(func() {
		if pdf.PageNo() == 1 {
			pdf.SetFont("Times", "B", titleSize)
			title := tr(l.Title)
			pdf.Text((pageW-pdf.GetStringWidth(title))/2, titleY, title)
			drawFrame(pdf, tr, l, pageW, pageH, out)
			// body flows above the frame on page one
			pdf.SetAutoPageBreak(true, frameHeight+framePadding)
			pdf.SetXY(margin, bodyTopFirst)
			return
		}
		pdf.SetAutoPageBreak(true, margin)
		pdf.SetXY(margin, margin)
	}, false)
	pdf.SetFooterFunc(func() {
		pdf.SetFont("Times", "", footerSize)
		pdf.Text(footerX, pageH-footerY, tr(fmt.Sprintf("Page %d - %s", pdf.PageNo(), l.Title)))
	})

	pdf.AddPage()
	pdf.SetFont("Times", "", bodySize)
	pdf.MultiCell(pageW-2*margin, bodyLeading, tr(paragraph(l.Body)), "", "L", false)

	out.Pages = pdf.PageNo()
	if err := pdf.Output(w); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	return out, nil
}

// drawFrame draws the bordered box anchored at the bottom of the page: a
// rule, a spacer, then the caption right-aligned beside the QR image.
func drawFrame(pdf *fpdf.Fpdf, tr func(string) string, l Layout, pageW, pageH float64, out *Rendered) {
	frame := Rect{X: frameX, Y: pageH - frameHeight, W: pageW - 2*frameX, H: frameHeight}
	out.Frame = frame

	pdf.SetLineWidth(0.5)
	pdf.Rect(frame.X, frame.Y, frame.W, frame.H, "D")

	innerX := frame.X + framePadding
	innerW := frame.W - 2*framePadding
	ruleY := frame.Y + framePadding + 1
	pdf.Line(innerX, ruleY, innerX+innerW, ruleY)

	top := ruleY + 1 + spacer
	img := Rect{X: innerX + innerW - l.ImageSize, Y: top, W: l.ImageSize, H: l.ImageSize}
	pdf.ImageOptions(qrImageName, img.X, img.Y, img.W, img.H, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	out.QRRect = img

	pdf.SetFont("Times", "", captionSize)
	pdf.SetXY(innerX, top)
	captionW := innerW - l.ImageSize - imageXPad
	pdf.MultiCell(captionW, captionSize*1.2, tr(l.Caption), "", "R", false)
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// paragraph renders line breaks as spaces, the way a flowed paragraph
// treats them.
func paragraph(text string) string {
	return strings.TrimSpace(lineBreaks.Replace(text))
}
