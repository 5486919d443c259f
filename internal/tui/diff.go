package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/snaptile/internal/config"
)

type diffKind int

const (
	diffContext diffKind = iota
	diffRemoved
	diffAdded
)

type diffLine struct {
	kind diffKind
	text string
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	addStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	rmStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ctxStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// RenderDiff renders the YAML difference between two configs, or "" when
// they are equal.
func RenderDiff(original, current *config.Config) string {
	lines := computeDiffLines(original, current)
	if len(lines) == 0 {
		return ""
	}

	out := make([]string, 0, len(lines))
	for _, dl := range lines {
		switch dl.kind {
		case diffAdded:
			out = append(out, addStyle.Render("+ "+dl.text))
		case diffRemoved:
			out = append(out, rmStyle.Render("- "+dl.text))
		default:
			out = append(out, ctxStyle.Render("  "+dl.text))
		}
	}
	content := titleStyle.Render("Pending changes") + "\n\n" + strings.Join(out, "\n")
	return boxStyle.Render(content)
}

func computeDiffLines(original, current *config.Config) []diffLine {
	if original == nil || current == nil {
		return nil
	}

	origBytes, err := yaml.Marshal(original)
	if err != nil {
		return nil
	}
	currBytes, err := yaml.Marshal(current)
	if err != nil {
		return nil
	}

	origStr := strings.TrimSpace(string(origBytes))
	currStr := strings.TrimSpace(string(currBytes))
	if origStr == currStr {
		return nil
	}

	return lcsDiff(strings.Split(origStr, "\n"), strings.Split(currStr, "\n"))
}

// lcsDiff computes a line diff using longest common subsequence. Config
// files are a few dozen lines, so the quadratic table is fine.
func lcsDiff(a, b []string) []diffLine {
	m, n := len(a), len(b)

	tbl := make([][]int, m+1)
	for i := range tbl {
		tbl[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				tbl[i][j] = tbl[i+1][j+1] + 1
			case tbl[i+1][j] >= tbl[i][j+1]:
				tbl[i][j] = tbl[i+1][j]
			default:
				tbl[i][j] = tbl[i][j+1]
			}
		}
	}

	var all []diffLine
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case a[i] == b[j]:
			all = append(all, diffLine{kind: diffContext, text: a[i]})
			i++
			j++
		case tbl[i+1][j] >= tbl[i][j+1]:
			all = append(all, diffLine{kind: diffRemoved, text: a[i]})
			i++
		default:
			all = append(all, diffLine{kind: diffAdded, text: b[j]})
			j++
		}
	}
	for ; i < m; i++ {
		all = append(all, diffLine{kind: diffRemoved, text: a[i]})
	}
	for ; j < n; j++ {
		all = append(all, diffLine{kind: diffAdded, text: b[j]})
	}

	return filterDiffContext(all, 1)
}

// filterDiffContext keeps changed lines and ctx surrounding context lines.
func filterDiffContext(lines []diffLine, ctx int) []diffLine {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.kind == diffContext {
			continue
		}
		for j := max(0, i-ctx); j <= min(len(lines)-1, i+ctx); j++ {
			keep[j] = true
		}
	}

	var result []diffLine
	prevKept := true
	for i, l := range lines {
		if !keep[i] {
			prevKept = false
			continue
		}
		if !prevKept {
			result = append(result, diffLine{kind: diffContext, text: "..."})
		}
		result = append(result, l)
		prevKept = true
	}
	return result
}
