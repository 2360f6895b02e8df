package tui

import (
	"fmt"
	"strings"
)

// View satisfies tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("anitrack"))
	b.WriteString("\n\n")

	if len(m.series) == 0 {
		b.WriteString(dimRowStyle.Render("no series yet — press 'a' to add one"))
		b.WriteString("\n")
	}

	for i, row := range m.series {
		b.WriteString(m.renderRow(i, row))
		b.WriteString("\n")
	}

	b.WriteString("\n")

	if m.watching != nil {
		b.WriteString(statusBarStyle.Render(fmt.Sprintf("playing episode %d…", m.watching.episode)))
		b.WriteString("\n")
	}

	if m.adding {
		b.WriteString(m.renderAddSeries())
	}

	if m.scoring {
		b.WriteString(m.renderScorePrompt())
	}

	if len(m.errLog) > 0 {
		b.WriteString(errorRowStyle.Render(strings.Join(m.errLog, "\ncaused by: ")))
		b.WriteString("\n")
	}

	b.WriteString(statusBarStyle.Render("a add · enter play · r pull · s push · d drop · h hold · f/b force · e score · x split · q quit"))

	return b.String()
}

func (m *Model) renderRow(i int, row LoadedSeries) string {
	prefix := "  "
	if i == m.cursor {
		prefix = "> "
	}

	var line string
	switch row.Kind {
	case LoadComplete:
		s := row.Series
		status := s.Entry.Status().String()
		line = fmt.Sprintf("%s%-30s %s %3d/%d", prefix, s.Config.Nickname,
			statusColor(status).Render(status), s.Entry.WatchedEpisodes(), s.Info.Episodes)
		if score := s.Entry.Score(); score != nil {
			line += fmt.Sprintf("  score %s", m.scoreDisplay(*score))
		}
	case LoadPartial:
		line = fmt.Sprintf("%s%-30s %s", prefix, row.Config.Nickname, errorRowStyle.Render("partial: "+row.Err.Error()))
	case LoadNone:
		line = fmt.Sprintf("%s%-30s %s", prefix, row.Config.Nickname, errorRowStyle.Render("unavailable: "+row.Err.Error()))
	}

	if i == m.cursor {
		return selectedRowStyle.Render(line)
	}
	return line
}

func (m *Model) scoreDisplay(score uint8) string {
	if m.svc == nil {
		return fmt.Sprintf("%d", score)
	}
	return m.svc.ScoreToStr(score)
}

func (m *Model) renderAddSeries() string {
	var b strings.Builder
	b.WriteString(inputPromptStyle.Render("add series: "))
	b.WriteString(m.input.Value())
	b.WriteString("\n")

	for _, s := range m.suggestions {
		switch {
		case s.FolderName != "":
			b.WriteString(dimRowStyle.Render("  folder: " + s.FolderName))
			b.WriteString("\n")
		case s.Info != nil:
			b.WriteString(dimRowStyle.Render("  remote: " + s.Info.Title.Preferred))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m *Model) renderScorePrompt() string {
	return inputPromptStyle.Render("score: ") + m.scoreInput.Value() + "\n"
}
