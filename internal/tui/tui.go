// Package tui содержит текстовый интерфейс для просмотра манифеста
// и выбора треков к загрузке
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hazadus/go-163grab/internal/manifest"
	"github.com/hazadus/go-163grab/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	markedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// recordItem реализует интерфейс list.Item для записи манифеста
type recordItem struct {
	record manifest.TrackRecord
}

func (i recordItem) FilterValue() string {
	return fmt.Sprintf("%s %s", i.record.Artist, i.record.Name)
}

// recordItemDelegate реализует отображение элементов списка
type recordItemDelegate struct {
	model *Model
}

func (d recordItemDelegate) Height() int                             { return 1 }
func (d recordItemDelegate) Spacing() int                            { return 0 }
func (d recordItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d recordItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(recordItem)
	if !ok {
		return
	}

	mark := "  "
	if d.model.marked[i.record.Index] {
		mark = markedStyle.Render("✔ ")
	}

	// Строка таблицы: номер | исполнитель | название | формат | размер
	str := fmt.Sprintf("%s%-4d %-20s %-40s %-5s %s",
		mark,
		i.record.Index,
		utils.TruncateString(i.record.Artist, 20),
		utils.TruncateString(i.record.Name, 40),
		i.record.Type,
		utils.FormatFileSize(i.record.Size))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка записей манифеста
type Model struct {
	list     list.Model
	records  []manifest.TrackRecord
	marked   map[int]bool
	confirm  bool
	quitting bool
}

// NewModel создает новую модель списка записей
func NewModel(playlistName string, records []manifest.TrackRecord) *Model {
	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = recordItem{record: record}
	}

	model := &Model{
		records: records,
		marked:  make(map[int]bool),
	}

	l := list.New(items, recordItemDelegate{model: model}, 0, 0)
	l.Title = playlistName
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	model.list = l
	return model
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "enter", " ":
			// Отмечаем трек к загрузке
			if item, ok := m.list.SelectedItem().(recordItem); ok {
				m.marked[item.record.Index] = !m.marked[item.record.Index]
			}
			return m, nil

		case "a":
			// Отмечаем все треки разом
			for _, record := range m.records {
				m.marked[record.Index] = true
			}
			return m, nil

		case "d":
			// Завершаем выбор и переходим к загрузке
			m.confirm = true
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	view := m.list.View()
	extraHelp := helpStyle.Render("Enter: отметить • a: отметить все • d: скачать отмеченные • q: выход")
	return view + "\n" + extraHelp
}

// Selected возвращает отмеченные записи, если выбор был подтвержден
func (m *Model) Selected() []manifest.TrackRecord {
	if !m.confirm {
		return nil
	}

	var selected []manifest.TrackRecord
	for _, record := range m.records {
		if m.marked[record.Index] {
			selected = append(selected, record)
		}
	}
	return selected
}

// App представляет TUI приложение просмотра манифеста
type App struct {
	playlistName string
	records      []manifest.TrackRecord
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(playlistName string, records []manifest.TrackRecord) *App {
	return &App{
		playlistName: playlistName,
		records:      records,
	}
}

// Run запускает TUI и возвращает записи, отмеченные к загрузке
func (a *App) Run() ([]manifest.TrackRecord, error) {
	model := NewModel(a.playlistName, a.records)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return nil, err
	}

	return model.Selected(), nil
}
