package main

import (
	"fmt"
	"strings"
)

func renderCard(item ImageData, width int, st *Styles) string {
	tags := item.Tags
	if tags == "" {
		tags = item.Id
	}
	stats := fmt.Sprintf("%s %d  %s %d  %s %d  %s %d",
		st.Label.Render("Likes"), item.Likes,
		st.Label.Render("Views"), item.Views,
		st.Label.Render("Comments"), item.Comments,
		st.Label.Render("Downloads"), item.Downloads,
	)
	body := strings.Join([]string{
		st.CardTitle.Render(tags),
		st.Dim.Render("thumb ") + item.PreviewUrl,
		st.Dim.Render("full  ") + item.LargeUrl,
		stats,
	}, "\n")
	return st.Card.Width(max(width-2, 20)).Render(body)
}

func renderCards(items []ImageData, width int, st *Styles) string {
	cards := make([]string, len(items))
	for i, item := range items {
		cards[i] = renderCard(item, width, st)
	}
	return strings.Join(cards, "\n")
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Image search · " + a.provider))
	b.WriteString("\n")
	b.WriteString(a.input.View())
	b.WriteString("\n\n")
	b.WriteString(a.results.View())
	b.WriteString("\n")
	b.WriteString(a.statusLine())
	b.WriteString("\n")

	for i := 0; i < maxToasts; i++ {
		if i < len(a.toasts) {
			b.WriteString(a.renderToast(a.toasts[i]))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("enter search • tab focus • j/k pgup/pgdn scroll • t top • r retry • q quit"))
	return b.String()
}

func (a *App) statusLine() string {
	state := a.session.State()
	parts := []string{}
	if state.Fetching {
		parts = append(parts, a.spinner.View()+" loading page "+fmt.Sprint(a.inflight.Page))
	}
	if state.Query != "" {
		parts = append(parts, a.styles.Status.Render(fmt.Sprintf("%q · page %d · %d images", state.Query, state.Page, len(a.items))))
	}
	if a.showTop {
		parts = append(parts, a.styles.ScrollTop.Render("↑ top (t)"))
	}
	return strings.Join(parts, "  ")
}

func (a *App) renderToast(t toast) string {
	switch t.level {
	case toastWarning:
		return a.styles.ToastWarning.Render("Warning: " + t.text)
	case toastSuccess:
		return a.styles.ToastSuccess.Render("Success: " + t.text)
	case toastError:
		return a.styles.ToastError.Render("Error: " + t.text)
	default:
		return a.styles.ToastInfo.Render("Info: " + t.text)
	}
}
