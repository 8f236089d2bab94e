package nowplaying

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ICYFetcher reads one StreamTitle block from the stream itself.
type ICYFetcher struct {
	HTTP      *http.Client
	URL       string
	UserAgent string
	// Timeout bounds the whole read, since the body never ends.
	Timeout time.Duration
}

func (f *ICYFetcher) Fetch(ctx context.Context) (Title, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return Title{}, err
	}
	req.Header.Set("Icy-MetaData", "1")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Title{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Title{}, fmt.Errorf("icy: status %d", resp.StatusCode)
	}
	metaInt, err := strconv.Atoi(resp.Header.Get("icy-metaint"))
	if err != nil || metaInt <= 0 {
		return Title{}, fmt.Errorf("icy: stream does not interleave metadata")
	}

	raw, err := firstMetaBlock(bufio.NewReader(resp.Body), metaInt)
	if err != nil {
		return Title{}, err
	}
	title := streamTitle(raw)
	if title == "" {
		return Title{}, ErrNoTitle
	}
	if artist, song, ok := strings.Cut(title, " - "); ok {
		return Title{Title: clean(song), Artist: clean(artist)}, nil
	}
	return Title{Title: clean(title)}, nil
}

// firstMetaBlock skips metaInt bytes of audio and returns the metadata block
// that follows.
func firstMetaBlock(r *bufio.Reader, metaInt int) (string, error) {
	if _, err := io.CopyN(io.Discard, r, int64(metaInt)); err != nil {
		return "", err
	}
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", ErrNoTitle
	}
	meta := make([]byte, int(n)*16)
	if _, err := io.ReadFull(r, meta); err != nil {
		return "", err
	}
	return strings.TrimRight(string(meta), "\x00"), nil
}

// streamTitle extracts StreamTitle='...' from an ICY metadata block.
func streamTitle(meta string) string {
	idx := strings.Index(meta, "StreamTitle=")
	if idx < 0 {
		return ""
	}
	meta = strings.TrimSpace(meta[idx+len("StreamTitle="):])
	if meta == "" {
		return ""
	}

	if q := meta[0]; q == '\'' || q == '"' {
		meta = meta[1:]
		// Titles may contain the quote character; the terminator is a quote
		// followed by ';' or the end of the block.
		if end := strings.Index(meta, string(q)+";"); end >= 0 {
			meta = meta[:end]
		} else {
			meta = strings.TrimSuffix(meta, string(q))
		}
	} else if end := strings.IndexByte(meta, ';'); end >= 0 {
		meta = meta[:end]
	}
	return strings.TrimSpace(meta)
}
