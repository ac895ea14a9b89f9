package ui

import "github.com/charmbracelet/bubbles/key"

type loginKeyMap struct {
	Submit key.Binding
	Next   key.Binding
	Toggle key.Binding
	Quit   key.Binding
}

func (k loginKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Next, k.Toggle, k.Quit}
}

func (k loginKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type mainKeyMap struct {
	Open     key.Binding
	Language key.Binding
	Metric   key.Binding
	Submit   key.Binding
	Refresh  key.Binding
	Scroll   key.Binding
	Logout   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func (k mainKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Submit, k.Language, k.Metric, k.Logout, k.Help, k.Quit}
}

func (k mainKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Submit, k.Language, k.Metric},
		{k.Refresh, k.Scroll, k.Logout},
		{k.Help, k.Quit},
	}
}

type pickerKeyMap struct {
	Select key.Binding
	Cancel key.Binding
}

func (k pickerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Cancel}
}

func (k pickerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var forceQuit = key.NewBinding(key.WithKeys("ctrl+c"))

func defaultLoginKeys() loginKeyMap {
	return loginKeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Next:   key.NewBinding(key.WithKeys("tab", "shift+tab", "up", "down"), key.WithHelp("tab", "next field")),
		Toggle: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "sign in/up")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func defaultMainKeys() mainKeyMap {
	return mainKeyMap{
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open pdf")),
		Language: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
		Metric:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "rank by")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "get videos")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh history")),
		Scroll:   key.NewBinding(key.WithKeys("up", "down", "pgup", "pgdown"), key.WithHelp("↑/↓", "scroll")),
		Logout:   key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "log out")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func defaultPickerKeys() pickerKeyMap {
	return pickerKeyMap{
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Cancel: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "cancel")),
	}
}
