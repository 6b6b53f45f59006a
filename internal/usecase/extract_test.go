package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TOSAnalyzer/internal/config"
	"TOSAnalyzer/internal/infrastructure/fetcher"
	"TOSAnalyzer/internal/ports"
)

func TestExtractImage(t *testing.T) {
	t.Parallel()

	png := []byte("\x89PNG\r\n\x1a\nfake")
	encoded := base64.StdEncoding.EncodeToString(png)

	testCases := []struct {
		name     string
		image    string
		mime     string
		ocr      *stubOCR
		want     string
		wantMime string
		wantErr  error
	}{
		{name: "missing", image: "", mime: "image/png", ocr: &stubOCR{}, wantErr: ErrNoImage},
		{name: "blank data url", image: "data:image/png;base64,", ocr: &stubOCR{}, wantErr: ErrNoImage},
		{name: "bad base64", image: "***", mime: "image/png", ocr: &stubOCR{}, wantErr: ErrInvalidImage},
		{name: "ocr error", image: encoded, mime: "image/png", ocr: &stubOCR{err: errBoom}, wantErr: errBoom},
		{name: "trims text", image: encoded, mime: "image/png", ocr: &stubOCR{text: "  Terms apply.\n"}, want: "Terms apply.", wantMime: "image/png"},
		{name: "data url mime", image: "data:image/jpeg;base64," + encoded, ocr: &stubOCR{text: "ok"}, want: "ok", wantMime: "image/jpeg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewExtractService(ExtractDeps{OCR: tc.ocr})
			got, err := svc.ExtractImage(context.Background(), tc.image, tc.mime)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractImage returned error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("text = %q, want %q", got, tc.want)
			}
			if tc.ocr.gotMime != tc.wantMime {
				t.Fatalf("mime = %q, want %q", tc.ocr.gotMime, tc.wantMime)
			}
			if string(tc.ocr.gotBytes) != string(png) {
				t.Fatalf("ocr received wrong bytes")
			}
		})
	}
}

func TestExtractImage_OCRFailurePrefix(t *testing.T) {
	t.Parallel()

	svc := NewExtractService(ExtractDeps{OCR: &stubOCR{err: errBoom}})
	_, err := svc.ExtractImage(context.Background(), base64.StdEncoding.EncodeToString([]byte("x")), "image/png")
	if err == nil || !strings.HasPrefix(err.Error(), "OCR failed: ") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractImage_NoOCRConfigured(t *testing.T) {
	t.Parallel()

	svc := NewExtractService(ExtractDeps{})
	_, err := svc.ExtractImage(context.Background(), base64.StdEncoding.EncodeToString([]byte("x")), "image/png")
	if !errors.Is(err, ErrExtractorMissing) {
		t.Fatalf("error = %v, want ErrExtractorMissing", err)
	}
}

func TestExtractURL(t *testing.T) {
	t.Parallel()

	for _, bad := range []string{"", "example.com/terms", "ftp://example.com/terms", "http://", "::"} {
		svc := NewExtractService(ExtractDeps{Fetcher: &stubFetcher{}})
		if _, err := svc.ExtractURL(context.Background(), bad); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("ExtractURL(%q) error = %v, want ErrInvalidURL", bad, err)
		}
	}

	stub := &stubFetcher{text: "\n Terms of Service \n"}
	svc := NewExtractService(ExtractDeps{Fetcher: stub})
	got, err := svc.ExtractURL(context.Background(), " https://example.com/terms ")
	if err != nil {
		t.Fatalf("ExtractURL returned error: %v", err)
	}
	if got != "Terms of Service" {
		t.Fatalf("text = %q", got)
	}
	if stub.gotURL != "https://example.com/terms" {
		t.Fatalf("fetched %q", stub.gotURL)
	}

	failing := NewExtractService(ExtractDeps{Fetcher: &stubFetcher{err: errBoom}})
	if _, err := failing.ExtractURL(context.Background(), "https://example.com"); !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want errBoom", err)
	}
}

func TestExtractURL_RefusesInternalHosts(t *testing.T) {
	t.Parallel()

	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>internal-admin-secret</p>"))
	}))
	defer internal.Close()

	svc := NewExtractService(ExtractDeps{Fetcher: fetcher.NewPageFetcher(config.FetcherConfig{}, nil)})
	text, err := svc.ExtractURL(context.Background(), internal.URL+"/admin")
	if !errors.Is(err, ports.ErrBlockedAddress) {
		t.Fatalf("error = %v, want ErrBlockedAddress", err)
	}
	if text != "" {
		t.Fatalf("leaked text %q", text)
	}
}
