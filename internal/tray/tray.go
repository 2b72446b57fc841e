package tray

import (
	"fmt"
	"time"

	"Mansoor88-6/wellness-agent/internal/coordinator"
	"Mansoor88-6/wellness-agent/internal/models"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

// Tray renders a system tray menu with the current activity state and
// one-click acknowledgments. systray requires the process main thread, so
// Run blocks; the daemon runs everything else in goroutines around it.
type Tray struct {
	coord  *coordinator.Coordinator
	logger *zap.Logger
	onQuit func()
}

func New(coord *coordinator.Coordinator, onQuit func(), logger *zap.Logger) *Tray {
	return &Tray{
		coord:  coord,
		logger: logger,
		onQuit: onQuit,
	}
}

// Run starts the tray loop and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit asks the tray loop to exit, unblocking Run.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Wellness")
	systray.SetTooltip("Wellness Agent")

	statusItem := systray.AddMenuItem("Starting...", "Current activity state")
	statusItem.Disable()
	systray.AddSeparator()

	breakItem := systray.AddMenuItem("Log break", "Acknowledge the break reminder")
	postureItem := systray.AddMenuItem("Posture checked", "Acknowledge the posture reminder")
	eyeItem := systray.AddMenuItem("Eyes rested", "Acknowledge the eye care reminder")
	waterItem := systray.AddMenuItem("Water logged", "Acknowledge the hydration reminder")
	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Stop the wellness agent")

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		t.refreshStatus(statusItem)
		for {
			select {
			case <-ticker.C:
				t.refreshStatus(statusItem)
			case <-breakItem.ClickedCh:
				t.acknowledge(models.ReminderBreak)
			case <-postureItem.ClickedCh:
				t.acknowledge(models.ReminderPosture)
			case <-eyeItem.ClickedCh:
				t.acknowledge(models.ReminderEyeCare)
			case <-waterItem.ClickedCh:
				t.acknowledge(models.ReminderHydration)
			case <-quitItem.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *Tray) refreshStatus(item *systray.MenuItem) {
	status := t.coord.Status()
	active := time.Duration(status.ActiveSecsToday) * time.Second
	item.SetTitle(fmt.Sprintf("%s | %s active today", status.State, active.Round(time.Minute)))
}

func (t *Tray) acknowledge(kind models.ReminderKind) {
	if err := t.coord.Acknowledge(kind); err != nil {
		t.logger.Error("Failed to acknowledge from tray",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}

func (t *Tray) onExit() {
	if t.onQuit != nil {
		t.onQuit()
	}
}
