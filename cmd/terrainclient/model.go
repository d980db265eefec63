package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/voidterrain/terrain/cmd/terrainclient/components"
	"github.com/voidterrain/terrain/internal/heightfield"
	"github.com/voidterrain/terrain/internal/minimap"
	"github.com/voidterrain/terrain/internal/render"
	"github.com/voidterrain/terrain/internal/streaming"
)

// cameraStep is how far, in world units, each arrow-key press moves the
// camera. Half a chunk keeps window-crossing frequent enough to watch.
const cameraStep = float64(heightfield.ChunkSize) / 2

type tickMsg time.Time

// model drives the Streaming Coordinator interactively: arrow keys move
// a virtual camera, the coordinator ticks on a fixed interval, and the
// view surfaces window/dirty/retry/minimap state for inspection.
type model struct {
	coordinator *streaming.Coordinator
	fake        *render.Fake

	cam         streaming.Camera
	tickEvery   time.Duration
	forceResync bool
	firstTick   bool

	lastTick time.Time
	width    int
	height   int

	log []string
}

func newModel(coordinator *streaming.Coordinator, fake *render.Fake, tickEvery time.Duration) model {
	return model{
		coordinator: coordinator,
		fake:        fake,
		tickEvery:   tickEvery,
		firstTick:   true,
	}
}

func (m model) Init() tea.Cmd {
	return scheduleTick(m.tickEvery)
}

func scheduleTick(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.cam.Z -= cameraStep
		case "down", "j":
			m.cam.Z += cameraStep
		case "left", "h":
			m.cam.X -= cameraStep
		case "right", "l":
			m.cam.X += cameraStep
		case "r":
			m.forceResync = true
			m.logf("reconnect requested at camera (%.0f, %.0f)", m.cam.X, m.cam.Z)
		}
		return m, nil

	case tickMsg:
		connected := m.firstTick || m.forceResync
		m.firstTick = false
		m.forceResync = false

		now := time.Time(msg)
		before := m.coordinator.DirtyCount()
		m.coordinator.Tick(now, m.cam, connected)
		m.lastTick = now

		if connected {
			m.logf("window (re)subscribed, dirty=%d", m.coordinator.DirtyCount())
		} else if after := m.coordinator.DirtyCount(); after != before {
			m.logf("dirty set %d -> %d", before, after)
		}

		return m, scheduleTick(m.tickEvery)
	}

	return m, nil
}

func (m *model) logf(format string, args ...any) {
	m.log = append(m.log, fmt.Sprintf(format, args...))
	if len(m.log) > 6 {
		m.log = m.log[len(m.log)-6:]
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(components.TitleStyle.Render("voidterrain streaming coordinator") + "\n\n")

	center := streaming.ChunkCenter(m.cam)
	stats := strings.Join([]string{
		components.Row("camera", fmt.Sprintf("(%.1f, %.1f)", m.cam.X, m.cam.Z)),
		components.Row("chunk center", center.String()),
		components.Row("dirty", fmt.Sprintf("%d", m.coordinator.DirtyCount())),
		components.Row("retrying", fmt.Sprintf("%d", m.coordinator.RetryCount())),
		components.Row("spawned", fmt.Sprintf("%d", m.spawnedCount())),
	}, "\n")
	b.WriteString(components.BorderStyle.Render(stats) + "\n\n")

	if m.coordinator.Minimap != nil {
		b.WriteString(components.BorderStyle.Render(renderMinimap(m.coordinator.Minimap)) + "\n\n")
	}

	if len(m.log) > 0 {
		b.WriteString(components.BorderStyle.Render(strings.Join(m.log, "\n")) + "\n\n")
	}

	b.WriteString(components.HelpStyle.Render("arrows/hjkl move camera • r forces a reconnect • q quits"))
	b.WriteString("\n" + components.StatusBarStyle.Render(fmt.Sprintf("last tick %s", m.lastTick.Format("15:04:05.000"))))

	return b.String()
}

// spawnedCount counts distinct coordinates the fake renderer has
// received a SpawnChunk call for.
func (m model) spawnedCount() int {
	return m.fake.Len()
}

// renderMinimap downsamples the texture's pixel buffer into a grid of
// colored blocks sized to fit a terminal viewport.
func renderMinimap(tex *minimap.Texture) string {
	const cells = 32
	side := tex.Size
	cell := side / cells
	if cell < 1 {
		cell = 1
	}

	var b strings.Builder
	for gy := 0; gy*cell < side; gy++ {
		for gx := 0; gx*cell < side; gx++ {
			o := (gy*cell*side + gx*cell) * 4
			r, g, bch, a := tex.Pixels[o], tex.Pixels[o+1], tex.Pixels[o+2], tex.Pixels[o+3]
			if a == 0 {
				b.WriteString(lipgloss.NewStyle().Foreground(components.MutedColor).Render("·"))
				continue
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, bch)))
			b.WriteString(style.Render("█"))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
