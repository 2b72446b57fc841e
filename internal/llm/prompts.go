package llm

import "fmt"

// SystemPersonality is the assistant's standing instruction for chat-style
// output.
const SystemPersonality = "You are a supportive personal wellness assistant. " +
	"Be brief, warm, and practical. Never lecture; suggest one concrete action."

// HealthSuggestionPrompt asks the model to phrase a health nudge around the
// engine's numbers. The engine's decision is already made; the model only
// words it.
func HealthSuggestionPrompt(workMinutes, minutesSinceBreak int, recommendation, reasons string) string {
	return fmt.Sprintf(
		"The user has been working for %d minutes, last break %d minutes ago. "+
			"The assistant engine recommends: %s (reasons: %s). "+
			"Write a short, friendly two-sentence message delivering this advice.",
		workMinutes, minutesSinceBreak, recommendation, reasons)
}

// MorningBriefingPrompt summarizes the day ahead.
func MorningBriefingPrompt(pendingTasks int, topTask string, yesterdayActiveHours float64) string {
	return fmt.Sprintf(
		"Write a short morning briefing (3 sentences max). "+
			"Pending tasks: %d. Oldest task: %q. Yesterday's active screen time: %.1f hours. "+
			"Encourage a focused start without being preachy.",
		pendingTasks, topTask, yesterdayActiveHours)
}

// EveningBriefingPrompt summarizes the day behind.
func EveningBriefingPrompt(activeHours float64, sessions, breaksTaken int) string {
	return fmt.Sprintf(
		"Write a short evening wrap-up (3 sentences max). "+
			"Active screen time today: %.1f hours across %d work sessions, %d breaks taken. "+
			"Acknowledge the effort and suggest winding down.",
		activeHours, sessions, breaksTaken)
}

// NextTaskPrompt asks the model to explain why the already-chosen task is
// the one to tackle next. The choice itself is deterministic; the model
// only motivates it.
func NextTaskPrompt(title string, priority, pendingCount int, due string) string {
	if due == "" {
		due = "no due date"
	}
	return fmt.Sprintf(
		"The user's next task is %q (priority %d of 5, %s), picked from %d pending tasks. "+
			"In two sentences, explain why starting with it makes sense and suggest how to begin.",
		title, priority, due, pendingCount)
}

// SchedulePrompt asks the model to spread the pending backlog over the
// coming days. Tasks arrive pre-sorted by priority.
func SchedulePrompt(days int, taskLines string) string {
	return fmt.Sprintf(
		"Plan the following pending tasks over the next %d days:\n%s\n"+
			"Respond with one line per day in the form 'Day, Month DD: task (suggested time)'. "+
			"Put higher-priority and sooner-due tasks earlier. No other output.",
		days, taskLines)
}

// ParseTaskPrompt asks the model to extract task fields from natural
// language. Callers fall back to using the raw text as a title when the
// response is not valid JSON.
func ParseTaskPrompt(text string) string {
	return fmt.Sprintf(
		"Extract a task from this text: %q. "+
			`Respond with only a JSON object: {"title": string, "priority": 1-5, "due_date": "YYYY-MM-DD" or null}. `+
			"No other output.",
		text)
}
