package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"Mansoor88-6/wellness-agent/internal/models"

	"go.uber.org/zap"
)

// Urgency levels for desktop notifications.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// DesktopNotifier renders reminder and recommendation events as desktop
// notifications. Delivery is best-effort: a machine without a notification
// command just logs.
type DesktopNotifier struct {
	appName string
	logger  *zap.Logger
}

func NewDesktopNotifier(logger *zap.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		appName: "Wellness Agent",
		logger:  logger,
	}
}

// Available checks whether a notification command exists for this OS.
func (n *DesktopNotifier) Available() bool {
	switch runtime.GOOS {
	case "linux":
		_, err := exec.LookPath("notify-send")
		return err == nil
	case "darwin":
		_, err := exec.LookPath("osascript")
		return err == nil
	case "windows":
		_, err := exec.LookPath("powershell")
		return err == nil
	}
	return false
}

// Send delivers one notification.
func (n *DesktopNotifier) Send(title, body string, urgency Urgency) error {
	if !n.Available() {
		n.logger.Debug("Desktop notifications unavailable, skipping",
			zap.String("title", title),
		)
		return nil
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("notify-send",
			"--app-name="+n.appName,
			"--urgency="+string(urgency),
			title, body,
		)
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", body, title)
		cmd = exec.Command("osascript", "-e", script)
	case "windows":
		script := fmt.Sprintf(
			`[System.Reflection.Assembly]::LoadWithPartialName('System.Windows.Forms') | Out-Null; `+
				`[System.Windows.Forms.MessageBox]::Show(%q, %q) | Out-Null`, body, title)
		cmd = exec.Command("powershell", "-NoProfile", "-Command", script)
	default:
		return nil
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// NotifyReminder renders a fired reminder.
func (n *DesktopNotifier) NotifyReminder(st models.ReminderState) {
	minutes := st.IntervalSeconds / 60
	var title, body string
	switch st.Kind {
	case models.ReminderBreak:
		title = "Time for a break"
		body = fmt.Sprintf("You have been active for %d minutes. Step away for a bit.", minutes)
	case models.ReminderPosture:
		title = "Posture check"
		body = "Sit up straight, relax your shoulders."
	case models.ReminderEyeCare:
		title = "Eye care"
		body = "Look at something 20 feet away for 20 seconds."
	case models.ReminderHydration:
		title = "Hydration"
		body = "Time for a glass of water."
	default:
		title = "Reminder"
		body = string(st.Kind)
	}

	if err := n.Send(title, body, UrgencyNormal); err != nil {
		n.logger.Warn("Failed to deliver reminder notification",
			zap.String("kind", string(st.Kind)),
			zap.Error(err),
		)
	}
}

// NotifyRecommendation renders a recommendation event. Work suggestions are
// not pushed; the user asked to be nudged toward rest, not nagged to work.
func (n *DesktopNotifier) NotifyRecommendation(rec models.Recommendation) {
	if rec.Category == models.CategoryWork {
		return
	}

	title := "Take a break"
	urgency := UrgencyNormal
	if rec.Category == models.CategoryRest {
		title = "Get some rest"
		urgency = UrgencyCritical
	}

	body := rec.Message
	if len(rec.Reasons) > 0 {
		body += " (" + strings.Join(rec.Reasons, ", ") + ")"
	}

	if err := n.Send(title, body, urgency); err != nil {
		n.logger.Warn("Failed to deliver recommendation notification", zap.Error(err))
	}
}
