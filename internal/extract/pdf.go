package extract

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF reads the text layer of every page. Pages are separated by a
// newline; text positioning operators start new lines.
func extractPDF(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", 0, fmt.Errorf("pdfcpu read: %w", err)
	}

	var pages []string
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		if text := extractPageText(ctx, pageNr); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), ctx.PageCount, nil
}

func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

var (
	// textOpRe finds, in stream order: TJ arrays, literal and hex strings
	// shown with Tj or ', and the operators that move to a new line.
	textOpRe = regexp.MustCompile(`\[((?:\\.|[^\]\\])*)\]\s*TJ|\(((?:\\.|[^\\)])*)\)\s*(Tj|')|<([0-9A-Fa-f\s]*)>\s*Tj|\bT[dD*]|\bET\b`)
	// arrayItemRe splits a TJ array into strings and kerning adjustments.
	arrayItemRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)|(-?\d+(?:\.\d+)?)`)
)

// kerningSpace is the TJ adjustment, in thousandths of an em, past which a
// gap is rendered as a space.
const kerningSpace = -200

// extractTextFromStream pulls shown text out of a page content stream.
func extractTextFromStream(data []byte) string {
	var sb strings.Builder

	for _, m := range textOpRe.FindAllSubmatchIndex(data, -1) {
		switch {
		case m[2] >= 0: // [...] TJ
			sb.WriteString(decodeTJArray(data[m[2]:m[3]]))
		case m[4] >= 0: // (...) Tj or '
			if string(data[m[6]:m[7]]) == "'" {
				sb.WriteByte('\n')
			}
			sb.WriteString(decodePDFString(data[m[4]:m[5]]))
		case m[8] >= 0: // <...> Tj
			sb.WriteString(decodeHexString(data[m[8]:m[9]]))
		default: // Td, TD, T*, ET
			sb.WriteByte('\n')
		}
	}

	return cleanPDFText(sb.String())
}

func decodeTJArray(arr []byte) string {
	var sb strings.Builder
	for _, m := range arrayItemRe.FindAllSubmatchIndex(arr, -1) {
		if m[2] >= 0 {
			sb.WriteString(decodePDFString(arr[m[2]:m[3]]))
			continue
		}
		if n, err := strconv.ParseFloat(string(arr[m[4]:m[5]]), 64); err == nil && n < kerningSpace {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// decodePDFString handles PDF literal string escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// Octal escape (e.g. \040 for space).
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}

func decodeHexString(raw []byte) string {
	digits := strings.Join(strings.Fields(string(raw)), "")
	if len(digits)%2 == 1 {
		digits += "0"
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return ""
	}
	return string(b)
}

// cleanPDFText collapses spaces within lines, drops non-printable runes and
// removes blank lines.
func cleanPDFText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			if !unicode.IsPrint(r) {
				return -1
			}
			return r
		}, line)
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
