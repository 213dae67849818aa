package export

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/vanderheijden86/toolbar/pkg/model"
	"github.com/vanderheijden86/toolbar/pkg/toolbar"
)

// GenerateMermaid renders snap as a Mermaid flowchart. The bar is a
// left-to-right chain of nodes; every expander hangs off its proxy as a
// subgraph with dashed links.
func GenerateMermaid(snap toolbar.Snapshot, title string) string {
	var sb strings.Builder

	sb.WriteString("graph LR\n")
	sb.WriteString("    classDef active fill:#50FA7B,stroke:#333,color:#000\n")
	sb.WriteString("    classDef proxy fill:#FFB86C,stroke:#333,color:#000\n")
	sb.WriteString("    classDef separator fill:none,stroke:#6272A4,stroke-dasharray:3\n")
	sb.WriteString("\n")

	ids := newMermaidIDs()

	if title == "" {
		title = "toolbar"
	}
	fmt.Fprintf(&sb, "    subgraph bar[\"%s\"]\n", sanitizeMermaidText(title))
	sb.WriteString("    direction LR\n")
	var prev string
	for _, it := range snap.Items {
		id := ids.get("bar", it.ID)
		writeMermaidNode(&sb, id, it)
		if prev != "" {
			fmt.Fprintf(&sb, "    %s --- %s\n", prev, id)
		}
		prev = id
	}
	sb.WriteString("    end\n")

	for _, exp := range snap.Expanders {
		if len(exp.Items) == 0 {
			continue
		}
		group := ids.get("group", exp.Group)
		state := "closed"
		if exp.Visible {
			state = "open"
		}
		fmt.Fprintf(&sb, "\n    subgraph %s[\"%s (%s)\"]\n", group, sanitizeMermaidText(exp.Group), state)
		sb.WriteString("    direction TB\n")
		for _, it := range exp.Items {
			writeMermaidNode(&sb, ids.get(exp.Group, it.ID), it)
		}
		sb.WriteString("    end\n")
		if exp.ProxyID != "" {
			fmt.Fprintf(&sb, "    %s -.-> %s\n", ids.get("bar", exp.ProxyID), group)
		}
	}

	return sb.String()
}

func writeMermaidNode(sb *strings.Builder, id string, it toolbar.ItemSnapshot) {
	if it.Kind == model.KindSeparator {
		fmt.Fprintf(sb, "    %s[\" \"]\n", id)
		fmt.Fprintf(sb, "    class %s separator\n", id)
		return
	}
	label := it.Label
	if label == "" {
		label = it.Icon.Alt
	}
	if label == "" {
		label = it.ID
	}
	if it.Kind == model.KindExpanderProxy {
		label += " v"
	}
	fmt.Fprintf(sb, "    %s[\"%s\"]\n", id, sanitizeMermaidText(label))
	switch {
	case it.Active:
		fmt.Fprintf(sb, "    class %s active\n", id)
	case it.Kind == model.KindExpanderProxy:
		fmt.Fprintf(sb, "    class %s proxy\n", id)
	}
}

// mermaidIDs hands out deterministic, collision-free node ids. The same
// item id can appear on the bar and in an expander, so ids are scoped.
type mermaidIDs struct {
	byKey map[string]string
	used  map[string]bool
}

func newMermaidIDs() *mermaidIDs {
	return &mermaidIDs{byKey: make(map[string]string), used: make(map[string]bool)}
}

func (m *mermaidIDs) get(scope, orig string) string {
	key := scope + "\x00" + orig
	if id, ok := m.byKey[key]; ok {
		return id
	}
	base := sanitizeMermaidID(orig)
	id := base
	if m.used[id] {
		h := fnv.New32a()
		_, _ = h.Write([]byte(key))
		id = fmt.Sprintf("%s_%x", base, h.Sum32())
	}
	for n := 2; m.used[id]; n++ {
		id = fmt.Sprintf("%s_%d", base, n)
	}
	m.used[id] = true
	m.byKey[key] = id
	return id
}

func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "node"
	}
	return sb.String()
}

// sanitizeMermaidText escapes characters that break Mermaid labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, replacer.Replace(text))
	return strings.TrimSpace(result)
}
