// Package report renders the monthly digest as a Markdown document.
package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/IshaanNene/blogdigest/internal/types"
)

// DateLayout is the publish date format used in table rows.
const DateLayout = "02.01.2006"

// Section is the report block of one site.
type Section struct {
	Site     string
	Articles []types.Article
}

// Locale holds the user-facing strings of a report.
type Locale struct {
	Columns [5]string
	// Empty is a format string taking the month token.
	Empty string
}

var locales = map[string]Locale{
	"ru": {
		Columns: [5]string{"Сайт", "Название статьи", "Дата публикации", "Ссылка", "Описание"},
		Empty:   "Нет статей за %s.",
	},
	"en": {
		Columns: [5]string{"Site", "Article title", "Published", "Link", "Description"},
		Empty:   "No articles for %s.",
	},
}

// LookupLocale returns the strings for name, falling back to Russian.
func LookupLocale(name string) Locale {
	if l, ok := locales[name]; ok {
		return l
	}
	return locales["ru"]
}

// Renderer turns sections into Markdown.
type Renderer struct {
	locale Locale
	align  bool
}

// NewRenderer creates a Renderer for locale. With align set, table columns
// are padded to their display width.
func NewRenderer(locale string, align bool) *Renderer {
	return &Renderer{locale: LookupLocale(locale), align: align}
}

// Merge folds sections that share a site name into the first one, keeping
// first-appearance order. Merged article lists are re-sorted by date.
func Merge(sections []Section) []Section {
	index := make(map[string]int, len(sections))
	var out []Section
	for _, s := range sections {
		i, ok := index[s.Site]
		if !ok {
			index[s.Site] = len(out)
			out = append(out, Section{Site: s.Site, Articles: append([]types.Article(nil), s.Articles...)})
			continue
		}
		out[i].Articles = append(out[i].Articles, s.Articles...)
		sortByDate(out[i].Articles)
	}
	return out
}

// Render returns the Markdown document for month.
func (r *Renderer) Render(sections []Section, month string) string {
	var lines []string
	for _, s := range Merge(sections) {
		lines = append(lines, "## "+s.Site)
		if len(s.Articles) == 0 {
			lines = append(lines, fmt.Sprintf(r.locale.Empty, month), "")
			continue
		}

		rows := make([][]string, 0, len(s.Articles))
		for _, a := range s.Articles {
			rows = append(rows, []string{
				a.Site,
				escapeCell(a.Title),
				a.PublishedAt.UTC().Format(DateLayout),
				a.URL,
				escapeCell(a.Description),
			})
		}
		lines = append(lines, r.table(rows)...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Write renders the report to path, or to stdout when path is empty.
func (r *Renderer) Write(sections []Section, month, path string) error {
	out := r.Render(sections, month)
	if path == "" {
		return writeTo(os.Stdout, out)
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return nil
}

func writeTo(w io.Writer, s string) error {
	_, err := io.WriteString(w, s)
	return err
}

func (r *Renderer) table(rows [][]string) []string {
	header := r.locale.Columns[:]
	if !r.align {
		lines := []string{
			"| " + strings.Join(header, " | ") + " |",
			"| --- | --- | --- | --- | --- |",
		}
		for _, row := range rows {
			lines = append(lines, "| "+strings.Join(row, " | ")+" |")
		}
		return lines
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = max(3, runewidth.StringWidth(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}

	lines := []string{padRow(header, widths), "| " + strings.Join(sep, " | ") + " |"}
	for _, row := range rows {
		lines = append(lines, padRow(row, widths))
	}
	return lines
}

func padRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, c := range cells {
		padded[i] = runewidth.FillRight(c, widths[i])
	}
	return "| " + strings.Join(padded, " | ") + " |"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func sortByDate(articles []types.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.Before(articles[j].PublishedAt)
	})
}
