package templates

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// presenterScript drives keyboard navigation and keeps viewers in sync
// with the presenter over the websocket.
const presenterScript = `
(function () {
  var root = document.querySelector('[data-slide-index]');
  var index = root ? parseInt(root.dataset.slideIndex, 10) : 0;

  document.addEventListener('keydown', function (ev) {
    if (ev.key === 'ArrowRight' || ev.key === ' ' || ev.key === 'PageDown') {
      window.location = '/next';
    } else if (ev.key === 'ArrowLeft' || ev.key === 'PageUp') {
      window.location = '/prev';
    } else if (ev.key === 'o') {
      window.location = '/overview';
    }
  });

  var proto = window.location.protocol === 'https:' ? 'wss://' : 'ws://';
  var socket = new WebSocket(proto + window.location.host + '/ws');
  socket.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === 'slide' && msg.index !== index) {
      window.location = '/slides/' + msg.index;
    }
  };
})();
`

// SlidePage renders the presenter view for a single slide.
func SlidePage(data SlidePageData) templ.Component {
	return shell(data.Title, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<main class="slide layout-%s" data-slide-index="%d" data-slide-total="%d">`,
			html.EscapeString(data.Layout), data.Index, data.Total)

		if data.Image != "" {
			fmt.Fprintf(w, `<figure class="slide-image"><img src="%s" alt="%s">`,
				html.EscapeString(data.Image), html.EscapeString(data.Caption))
			if data.Caption != "" {
				fmt.Fprintf(w, `<figcaption>%s</figcaption>`, html.EscapeString(data.Caption))
			}
			io.WriteString(w, `</figure>`)
		}

		io.WriteString(w, `<section class="slide-body">`)
		if err := RawHTML(data.BodyHTML).Render(ctx, w); err != nil {
			return err
		}
		io.WriteString(w, `</section>`)

		fmt.Fprintf(w, `<footer class="slide-footer"><span class="deck-title">%s</span><span class="slide-counter">%d / %d</span>`,
			html.EscapeString(data.DeckTitle), data.Index+1, data.Total)
		io.WriteString(w, `<nav class="slide-nav"><a href="/prev" rel="prev">&larr;</a> <a href="/overview">&#9638;</a> <a href="/next" rel="next">&rarr;</a></nav></footer>`)
		io.WriteString(w, `</main>`)

		fmt.Fprintf(w, `<script>%s</script>`, presenterScript)
		return nil
	})
}

// OverviewPage renders the grid of all slides.
func OverviewPage(data OverviewPageData) templ.Component {
	return shell(data.Title, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<main class="overview"><h1>%s</h1><ol class="overview-grid">`, html.EscapeString(data.DeckTitle))
		for _, item := range data.Items {
			fmt.Fprintf(w, `<li class="overview-item layout-%s"><a href="/slides/%d"><span class="overview-index">%d</span> %s</a></li>`,
				html.EscapeString(item.Layout), item.Index, item.Index+1, html.EscapeString(item.Title))
		}
		io.WriteString(w, `</ol><p><a href="/">Back to the presentation</a></p></main>`)
		return nil
	})
}

// ErrorPage renders a navigation or server error view.
func ErrorPage(data ErrorPageData) templ.Component {
	return shell(data.Title, func(ctx context.Context, w io.Writer) error {
		fmt.Fprintf(w, `<main class="error-page"><h1>%s</h1><p>%s</p><p><a href="/">Back to the presentation</a></p></main>`,
			html.EscapeString(data.StatusLabel), html.EscapeString(data.Message))
		return nil
	})
}

func shell(title string, body func(ctx context.Context, w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title><link rel="stylesheet" href="/static/slidecast.css"></head><body>`,
			html.EscapeString(title))

		if err := body(ctx, w); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
