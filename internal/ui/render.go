package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/abelbrown/sylfinder/internal/model"
	"github.com/abelbrown/sylfinder/internal/session"
	"github.com/abelbrown/sylfinder/internal/view"
)

const appTitle = "Syllabus Video Finder"

// Empty-state texts.
const (
	noTopics  = "No topics found."
	noVideos  = "No video links found."
	noHistory = "No search history yet."
)

// FormatCount renders a like/view count with thousands separators, or N/A
// when the service did not report one.
func FormatCount(c model.Count) string {
	if !c.Known {
		return "N/A"
	}
	if c.Value > math.MaxInt64 {
		return humanize.Comma(math.MaxInt64) + "+"
	}
	return humanize.Comma(int64(c.Value))
}

// FormatWhen renders an instant as a date plus how long ago it was.
func FormatWhen(t, now time.Time) string {
	if t.IsZero() {
		return "unknown date"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format("Jan 2, 2006 15:04"), humanize.RelTime(t, now, "ago", "from now"))
}

// RenderResults renders the scrollable body of the main screen: the
// current upload's topics and ranked videos, then the history list.
func RenderResults(m view.MainScreen, now time.Time) string {
	var b strings.Builder

	if m.ShowResults {
		b.WriteString(SectionHeader.Render("Topics"))
		b.WriteString("\n")
		if len(m.Topics) == 0 {
			b.WriteString(indent(Muted.Render(noTopics), 2))
		}
		for _, topic := range m.Topics {
			b.WriteString(indent("• "+topic, 2))
		}

		b.WriteString(SectionHeader.Render("Videos (ranked by " + m.Metric.Label() + ")"))
		b.WriteString("\n")
		writeRanked(&b, m.RankedCurrent)
	}

	header := "Search History"
	switch {
	case m.HistoryLoading:
		header += " (refreshing...)"
	case m.HistoryStale:
		header += " (saved " + humanize.RelTime(m.HistoryFetchedAt, now, "ago", "from now") + ")"
	}
	b.WriteString(SectionHeader.Render(header))
	b.WriteString("\n")

	if len(m.RankedHistory) == 0 {
		b.WriteString(indent(Muted.Render(noHistory), 2))
	}
	for _, item := range m.RankedHistory {
		b.WriteString("\n")
		b.WriteString(indent(EntryHeader.Render(FormatWhen(item.Timestamp, now)+" · "+item.Language.Label()), 1))
		if len(item.Topics) > 0 {
			b.WriteString(indent(Muted.Render("Topics: "+strings.Join(item.Topics, ", ")), 2))
		}
		writeRanked(&b, item.Ranked)
	}

	return b.String()
}

func writeRanked(b *strings.Builder, ranked []model.RankedTopicResult) {
	if len(ranked) == 0 {
		b.WriteString(indent(Muted.Render(noVideos), 2))
		return
	}
	for _, r := range ranked {
		b.WriteString(TopicName.Render(r.Topic))
		b.WriteString("\n")
		if len(r.Videos) == 0 {
			b.WriteString(indent(Muted.Render(noVideos), 4))
			continue
		}
		for i, v := range r.Videos {
			title := v.Title
			if title == "" {
				title = v.Link
			}
			b.WriteString(indent(fmt.Sprintf("%d. %s", i+1, VideoTitle.Render(title)), 4))
			b.WriteString(indent(VideoLink.Render(v.Link), 7))
			b.WriteString(indent(VideoStats.Render(fmt.Sprintf("Likes %s · Views %s", FormatCount(v.LikeCount), FormatCount(v.ViewCount))), 7))
		}
	}
}

func indent(s string, n int) string {
	return strings.Repeat(" ", n) + s + "\n"
}

// renderLogin renders the login/sign-up form.
func renderLogin(ls view.LoginScreen, email, password string) string {
	title := "Sign In"
	toggle := "No account? ctrl+t to sign up"
	if ls.Mode == session.SignUp {
		title = "Sign Up"
		toggle = "Have an account? ctrl+t to sign in"
	}

	var b strings.Builder
	b.WriteString(TitleBar.Render(appTitle + " · " + title))
	b.WriteString("\n\n")
	b.WriteString(FormLabel.Render("Email") + email + "\n")
	b.WriteString(FormLabel.Render("Password") + password + "\n\n")

	label := title
	style := Button
	if ls.Pending {
		label = "Please wait..."
		style = ButtonBusy
	}
	b.WriteString(style.Render(label) + "\n")
	if ls.Error != "" {
		b.WriteString(ErrorStyle.Render(ls.Error) + "\n")
	}
	b.WriteString(Muted.Render(toggle) + "\n")
	return b.String()
}

// renderControls renders the file, language, metric and submit lines of
// the main screen.
func renderControls(m view.MainScreen, spin string) string {
	var b strings.Builder

	if m.FileName != "" {
		b.WriteString(" Selected: " + m.FileName + "\n")
	} else if m.Validating {
		b.WriteString(" Checking file...\n")
	} else {
		b.WriteString(Muted.Render(" No file selected (o to open a PDF)") + "\n")
	}

	button := Button.Render(m.SubmitLabel())
	if m.Loading {
		button = ButtonBusy.Render(m.SubmitLabel()) + " " + spin
	}
	b.WriteString(fmt.Sprintf(" Language: %s   Rank by: %s   %s\n",
		Setting.Render(m.Language.Label()), Setting.Render(m.Metric.Label()), button))

	if m.ErrorText != "" {
		b.WriteString(ErrorStyle.Render(m.ErrorText))
	}
	b.WriteString("\n")
	return b.String()
}
