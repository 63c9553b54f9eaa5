package pdf

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// contentLoadBudget caps how long a page may take to load the injected HTML.
const contentLoadBudget = 30 * time.Second

// A4 portrait in inches.
const (
	paperWidthIn  = 8.27
	paperHeightIn = 11.69
	marginIn      = 0.4
)

// Renderer turns an HTML document into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, html string) ([]byte, error)
	Close() error
}

// ChromeRenderer renders through a shared headless Chromium instance.
// Each Render call opens a fresh page and closes it when done.
type ChromeRenderer struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

var _ Renderer = (*ChromeRenderer)(nil)

// NewChromeRenderer launches headless Chromium and connects to it.
// chromeBin overrides the browser binary; empty uses the launcher default.
func NewChromeRenderer(chromeBin string) (*ChromeRenderer, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	if chromeBin != "" {
		l = l.Bin(chromeBin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to chromium: %w", err)
	}

	return &ChromeRenderer{browser: browser, launcher: l}, nil
}

func (r *ChromeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	loadCtx, cancel := context.WithTimeout(ctx, contentLoadBudget)
	defer cancel()

	page, err := r.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	page = page.Context(loadCtx)
	if err := page.SetDocumentContent(html); err != nil {
		return nil, fmt.Errorf("failed to set page content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load page content: %w", err)
	}

	width := paperWidthIn
	height := paperHeightIn
	margin := marginIn
	stream, err := page.Context(ctx).PDF(&proto.PagePrintToPDF{
		PrintBackground: true,
		PaperWidth:      &width,
		PaperHeight:     &height,
		MarginTop:       &margin,
		MarginBottom:    &margin,
		MarginLeft:      &margin,
		MarginRight:     &margin,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to print page to pdf: %w", err)
	}

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to read pdf stream: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("renderer produced an empty pdf")
	}

	return data, nil
}

func (r *ChromeRenderer) Close() error {
	err := r.browser.Close()
	r.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close chromium: %w", err)
	}
	return nil
}
