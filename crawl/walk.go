package crawl

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/jerpint/ragthedocs"
)

// pageResult holds the outcome of processing a single URL.
type pageResult struct {
	url        string
	finalURL   string // where redirects ended; equal to url when there were none
	bytes      int
	discovered []string
	err        error
}

// walk is the state of one crawl. Workers only read seed and scope; the
// rest is touched by the coordinator goroutine alone and workers
// communicate through channels.
type walk struct {
	crawler  *Crawler
	seed     string
	scope    ragthedocs.Scope
	frontier *Frontier
	progress ProgressFunc
	result   Result
}

// run dispatches frontier URLs to a pool of workers and feeds discovered
// links back into the frontier until it is empty and nothing is in flight.
// The coordinator is the frontier's only writer, so concurrent completions
// cannot enqueue the same URL twice.
func (w *walk) run(ctx context.Context) error {
	concurrency := w.crawler.concurrency()

	workCh := make(chan string, concurrency)
	resultCh := make(chan pageResult)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range workCh {
				res := w.process(ctx, u)
				select {
				case resultCh <- res:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	dispatched := 0
	pending := 0
	var next string
	hasNext := false

	canDispatch := func() bool {
		return w.crawler.MaxPages <= 0 || dispatched < w.crawler.MaxPages
	}
	fill := func() {
		if !hasNext && canDispatch() {
			next, hasNext = w.frontier.Pop()
		}
	}
	fill()

coordinatorLoop:
	for hasNext || pending > 0 {
		if ctx.Err() != nil {
			break
		}

		// A nil channel blocks forever, disabling the send case.
		var sendCh chan string
		if hasNext {
			sendCh = workCh
		}

		select {
		case <-ctx.Done():
			break coordinatorLoop
		case sendCh <- next:
			dispatched++
			pending++
			hasNext = false
		case res, ok := <-resultCh:
			if !ok {
				break coordinatorLoop
			}
			pending--
			w.handle(res)
		}

		fill()
	}

	close(workCh)

	// Results of fetches already in flight are still recorded.
	for res := range resultCh {
		w.handle(res)
	}

	return ctx.Err()
}

// handle records a worker result and enqueues its in-scope links.
func (w *walk) handle(res pageResult) {
	// The redirect target was fetched under another name; queueing it
	// later would fetch it twice.
	if res.finalURL != "" && res.finalURL != res.url {
		w.frontier.Visit(res.finalURL)
	}

	for _, link := range res.discovered {
		if w.scope.Allows(link) {
			w.frontier.Push(link)
		}
	}

	if res.err != nil {
		w.result.Failed++
		w.progress(ProgressEvent{
			Type:      ProgressFailed,
			Completed: w.result.Fetched + w.result.Failed,
			Total:     w.frontier.Discovered(),
			URL:       res.url,
			Error:     res.err,
		})
		return
	}

	w.result.Fetched++
	w.result.Bytes += res.bytes
	w.progress(ProgressEvent{
		Type:      ProgressCompleted,
		Completed: w.result.Fetched + w.result.Failed,
		Total:     w.frontier.Discovered(),
		URL:       res.url,
	})
}

// process fetches a URL, stores it and extracts its links. The page is
// stored under the URL it was finally served from, and relative links
// resolve against that URL. The page is written before its links are
// reported, so an interrupted crawl keeps every page it got to.
func (w *walk) process(ctx context.Context, rawURL string) pageResult {
	c := w.crawler
	res := pageResult{url: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil {
		res.err = ragthedocs.Errorf(ragthedocs.EFETCH, "%s: %v", rawURL, err)
		return res
	}

	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			res.err = err
			return res
		}
	}

	fetched, err := FetchWithRetryDelays(ctx, rawURL, c.Fetcher.Fetch, nil, c.retryDelays())
	if err != nil {
		if ctx.Err() != nil {
			res.err = ctx.Err()
		} else {
			res.err = ragthedocs.Errorf(ragthedocs.EFETCH, "%s: %v", rawURL, err)
		}
		return res
	}

	finalURL := rawURL
	if fetched.URL != "" {
		finalURL = ragthedocs.StripFragment(fetched.URL)
	}
	if finalURL != rawURL && !w.redirectAllowed(rawURL, finalURL) {
		res.err = ragthedocs.Errorf(ragthedocs.EFETCH, "%s: redirected out of scope to %s", rawURL, finalURL)
		return res
	}
	res.finalURL = finalURL

	page := &ragthedocs.Page{URL: finalURL, Body: fetched.Body}
	if err := c.Pages.Save(ctx, page); err != nil {
		res.err = ragthedocs.Errorf(ragthedocs.EFETCH, "store %s: %v", finalURL, err)
		return res
	}
	res.bytes = len(fetched.Body)

	// A page whose links cannot be read is still a stored page.
	if links, err := c.Links.ExtractLinks(fetched.Body, finalURL); err == nil {
		res.discovered = links
	}

	return res
}

// redirectAllowed reports whether a page requested as from may be kept
// under to. The seed only has to stay on the scope's host, since it is
// fetched whatever its version; every other page must stay in scope.
func (w *walk) redirectAllowed(from, to string) bool {
	if from == w.seed {
		u, err := url.Parse(to)
		return err == nil && strings.EqualFold(u.Host, w.scope.Domain)
	}
	return w.scope.Allows(to)
}
