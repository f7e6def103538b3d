package docs

import (
	"bufio"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// Topic is one help page: its lookup name and the title from its first heading.
type Topic struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

func Topics() []string {
	entries, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return []string{}
	}
	var topics []string
	for _, p := range entries {
		if topic := strings.TrimSuffix(path.Base(p), ".md"); topic != "" {
			topics = append(topics, topic)
		}
	}
	sort.Strings(topics)
	return topics
}

// Index lists every topic with its title, sorted by name.
func Index() []Topic {
	names := Topics()
	out := make([]Topic, 0, len(names))
	for _, name := range names {
		body, _ := Get(name)
		out = append(out, Topic{Name: name, Title: Title(body, name)})
	}
	return out
}

// Title returns the text of the first "# " heading in body, or fallback.
func Title(body, fallback string) string {
	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		if t, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "# "); ok {
			if t = strings.TrimSpace(t); t != "" {
				return t
			}
		}
	}
	return fallback
}

// Get looks a topic up by name. Names are case-insensitive and never paths.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" || strings.ContainsAny(topic, "/\\.") {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}
