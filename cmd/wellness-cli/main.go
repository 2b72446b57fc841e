package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"Mansoor88-6/wellness-agent/internal/database"
	"Mansoor88-6/wellness-agent/internal/export"
	"Mansoor88-6/wellness-agent/internal/handler"
	"Mansoor88-6/wellness-agent/internal/journal"
	"Mansoor88-6/wellness-agent/internal/llm"
	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	apiPort   int
	ollamaURL string
	llmModel  string
)

var rootCmd = &cobra.Command{
	Use:   "wellness-cli",
	Short: "CLI tool to interact with the wellness agent daemon",
	Long:  `A command-line interface to query status, recommendations and tasks from the running wellness agent via its localhost API.`,
}

// --- Client Helper Functions ---

func apiURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", apiPort, path)
}

func apiGet(path string, out interface{}) {
	resp, err := http.Get(apiURL(path))
	if err != nil {
		log.Fatalf("Error connecting to agent (%s): %v\nIs the wellness agent running?", apiURL(path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("Agent returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("Error decoding response: %v", err)
		}
	}
}

func apiPost(path string, payload interface{}, out interface{}) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Fatalf("Error encoding request: %v", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := http.Post(apiURL(path), "application/json", body)
	if err != nil {
		log.Fatalf("Error connecting to agent (%s): %v\nIs the wellness agent running?", apiURL(path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		log.Fatalf("Agent returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("Error decoding response: %v", err)
		}
	}
}

func llmClient() *llm.Client {
	return llm.NewClient(ollamaURL, llmModel, 60*time.Second, zap.NewNop())
}

func formatDurationHuman(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// statusSnapshot mirrors the agent's /api/v1/status response.
type statusSnapshot struct {
	State           string                 `json:"state"`
	Session         *models.WorkSession    `json:"session,omitempty"`
	Gap             *models.IdleGap        `json:"gap,omitempty"`
	Reminders       []models.ReminderState `json:"reminders"`
	SkewCount       int64                  `json:"skew_count"`
	SampleFailures  int64                  `json:"sample_failures"`
	ActiveSecsToday int64                  `json:"active_seconds_today"`
	SessionsToday   int                    `json:"sessions_today"`
}

func fetchStatus() statusSnapshot {
	var st statusSnapshot
	apiGet("/api/v1/status", &st)
	return st
}

// --- Command Definitions ---

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check if the wellness agent is running",
	Run: func(cmd *cobra.Command, args []string) {
		apiGet("/health", nil)
		fmt.Println("Agent is running.")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current activity state and reminder timers",
	Run: func(cmd *cobra.Command, args []string) {
		st := fetchStatus()

		fmt.Printf("State:           %s\n", strings.ToUpper(st.State))
		if st.Session != nil {
			fmt.Printf("Session started: %s\n", st.Session.StartTime.Format("15:04:05"))
			fmt.Printf("Active time:     %s\n", formatDurationHuman(st.Session.ActiveSeconds))
			if st.Session.DominantProcess != "" {
				fmt.Printf("Dominant app:    %s\n", st.Session.DominantProcess)
			}
		}
		if st.Gap != nil {
			fmt.Printf("Idle since:      %s\n", st.Gap.StartTime.Format("15:04:05"))
		}
		fmt.Printf("Active today:    %s across %d session(s)\n",
			formatDurationHuman(st.ActiveSecsToday), st.SessionsToday)

		fmt.Println("\nReminders:")
		for _, r := range st.Reminders {
			marker := " "
			if r.Due() {
				marker = "!"
			}
			fmt.Printf("  %s %-10s %s / %s\n", marker, r.Kind,
				formatDurationHuman(r.ElapsedActiveSeconds),
				formatDurationHuman(r.IntervalSeconds))
		}

		if st.SampleFailures > 0 || st.SkewCount > 0 {
			fmt.Printf("\nDiagnostics: %d sample failure(s), %d clock skew event(s)\n",
				st.SampleFailures, st.SkewCount)
		}
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Get the current work/break/rest recommendation",
	Run: func(cmd *cobra.Command, args []string) {
		useAI, _ := cmd.Flags().GetBool("ai")

		var rec models.Recommendation
		apiGet("/api/v1/suggest", &rec)

		fmt.Printf("[%s] %s\n", strings.ToUpper(string(rec.Category)), rec.Message)
		if len(rec.Reasons) > 0 {
			fmt.Printf("Reasons: %s\n", strings.Join(rec.Reasons, ", "))
		}

		if !useAI {
			return
		}

		st := fetchStatus()
		workMinutes := 0
		if st.Session != nil {
			workMinutes = int(st.Session.ActiveSeconds / 60)
		}
		minutesSinceBreak := workMinutes
		for _, r := range st.Reminders {
			if r.Kind == models.ReminderBreak && r.LastAcknowledgedAt != nil {
				minutesSinceBreak = int(time.Since(*r.LastAcknowledgedAt).Minutes())
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		prompt := llm.HealthSuggestionPrompt(workMinutes, minutesSinceBreak,
			string(rec.Category), strings.Join(rec.Reasons, ", "))
		text, err := llmClient().Generate(ctx, prompt, 200)
		if err != nil {
			log.Fatalf("LLM request failed: %v\nIs Ollama running at %s?", err, ollamaURL)
		}
		fmt.Printf("\n%s\n", strings.TrimSpace(text))
	},
}

var ackCmd = &cobra.Command{
	Use:   "ack <kind>",
	Short: "Acknowledge a reminder (break, posture, eye_care, hydration)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		kind := models.ReminderKind(args[0])
		if !kind.Valid() {
			log.Fatalf("Unknown reminder kind %q. Valid kinds: break, posture, eye_care, hydration", args[0])
		}
		apiPost("/api/v1/ack", handler.AcknowledgeRequest{Kind: string(kind)}, nil)
		fmt.Printf("Acknowledged %s reminder.\n", kind)
	},
}

var logBreakCmd = &cobra.Command{
	Use:   "log-break",
	Short: "Record that you just took a break",
	Run: func(cmd *cobra.Command, args []string) {
		minutes, _ := cmd.Flags().GetInt("minutes")

		apiPost("/api/v1/ack", handler.AcknowledgeRequest{Kind: string(models.ReminderBreak)}, nil)
		if minutes > 0 {
			fmt.Printf("Break of %dm logged. Timer reset.\n", minutes)
		} else {
			fmt.Println("Break logged. Timer reset.")
		}
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show today's health summary",
	Run: func(cmd *cobra.Command, args []string) {
		var summary handler.SummaryResponse
		apiGet("/api/v1/summary", &summary)

		fmt.Printf("Active today:  %s across %d session(s)\n",
			formatDurationHuman(summary.ActiveSecondsToday), summary.SessionCountToday)
		fmt.Printf("Journal:       %d event(s)\n", summary.TotalEvents)

		if len(summary.Fired) > 0 || len(summary.Acknowledged) > 0 {
			fmt.Println("\nReminders today:")
			for _, kind := range models.AllReminderKinds {
				fired := summary.Fired[string(kind)]
				acked := summary.Acknowledged[string(kind)]
				if fired == 0 && acked == 0 {
					continue
				}
				fmt.Printf("  %-10s fired %d, acknowledged %d\n", kind, fired, acked)
			}
		}
	},
}

// Task Command Group

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending tasks",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		var tasks []*models.Task
		apiGet(fmt.Sprintf("/api/v1/tasks?limit=%d", limit), &tasks)

		if len(tasks) == 0 {
			fmt.Println("No pending tasks.")
			return
		}
		for _, t := range tasks {
			due := ""
			if t.DueDate != nil {
				due = " (due " + t.DueDate.Format("2006-01-02") + ")"
			}
			fmt.Printf("  #%-4d [P%d] %s%s\n", t.ID, t.Priority, t.Title, due)
		}
	},
}

var tasksAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task (with --nl, extract it from natural language)",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		priority, _ := cmd.Flags().GetInt("priority")
		notes, _ := cmd.Flags().GetString("notes")
		dueStr, _ := cmd.Flags().GetString("due")
		natural, _ := cmd.Flags().GetBool("nl")

		text := strings.Join(args, " ")
		req := models.CreateTaskRequest{
			Title:    text,
			Priority: priority,
		}
		if natural {
			if parsed, ok := parseTaskText(text); ok {
				req = parsed
			} else {
				fmt.Fprintln(os.Stderr, "Could not parse task text, using it as the title.")
			}
		}
		if notes != "" {
			req.Description = &notes
		}
		if dueStr != "" {
			due, err := time.ParseInLocation("2006-01-02", dueStr, time.Local)
			if err != nil {
				log.Fatalf("Invalid --due date %q, expected YYYY-MM-DD", dueStr)
			}
			req.DueDate = &due
		}

		var task models.Task
		apiPost("/api/v1/tasks", req, &task)
		fmt.Printf("Added task #%d: %s\n", task.ID, task.Title)
	},
}

// parseTaskText asks the local LLM to extract task fields from free text.
// Any failure falls back to the literal text.
func parseTaskText(text string) (models.CreateTaskRequest, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	raw, err := llmClient().Generate(ctx, llm.ParseTaskPrompt(text), 150)
	if err != nil {
		return models.CreateTaskRequest{}, false
	}

	var parsed struct {
		Title    string  `json:"title"`
		Priority int     `json:"priority"`
		DueDate  *string `json:"due_date"`
	}
	raw = strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil || parsed.Title == "" {
		return models.CreateTaskRequest{}, false
	}

	req := models.CreateTaskRequest{Title: parsed.Title, Priority: parsed.Priority}
	if parsed.DueDate != nil && *parsed.DueDate != "" {
		if due, err := time.ParseInLocation("2006-01-02", *parsed.DueDate, time.Local); err == nil {
			req.DueDate = &due
		}
	}
	return req, true
}

var tasksNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the task to work on next",
	Run: func(cmd *cobra.Command, args []string) {
		var tasks []*models.Task
		apiGet("/api/v1/tasks?limit=50", &tasks)

		if len(tasks) == 0 {
			fmt.Println("No pending tasks. Great job!")
			return
		}

		// The agent orders pending tasks by priority, oldest first.
		task := tasks[0]
		due := ""
		if task.DueDate != nil {
			due = "due " + task.DueDate.Format("2006-01-02")
		}

		fmt.Println("Suggested task:")
		fmt.Printf("  #%-4d [P%d] %s", task.ID, task.Priority, task.Title)
		if due != "" {
			fmt.Printf(" (%s)", due)
		}
		fmt.Println()

		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		reason, err := llmClient().Generate(ctx,
			llm.NextTaskPrompt(task.Title, task.Priority, len(tasks), due), 150)
		if err != nil {
			// Without the LLM the numbers speak for themselves.
			fmt.Printf("\nHighest priority of %d pending tasks.\n", len(tasks))
			return
		}
		fmt.Printf("\n%s\n", strings.TrimSpace(reason))
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "AI-suggested plan for the pending backlog",
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")

		var tasks []*models.Task
		apiGet("/api/v1/tasks?limit=50", &tasks)

		if len(tasks) == 0 {
			fmt.Println("No pending tasks to schedule.")
			return
		}

		var lines strings.Builder
		for _, t := range tasks {
			fmt.Fprintf(&lines, "- %s (priority %d", t.Title, t.Priority)
			if t.DueDate != nil {
				fmt.Fprintf(&lines, ", due %s", t.DueDate.Format("2006-01-02"))
			}
			lines.WriteString(")\n")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		text, err := llmClient().Generate(ctx, llm.SchedulePrompt(days, lines.String()), 400)
		if err != nil {
			log.Fatalf("LLM request failed: %v\nIs Ollama running at %s?", err, ollamaURL)
		}

		fmt.Printf("Task schedule (next %d days):\n\n%s\n", days, strings.TrimSpace(text))
	},
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			log.Fatalf("Invalid task id %q", args[0])
		}
		apiPost(fmt.Sprintf("/api/v1/tasks/complete?id=%d", id), nil, nil)
		fmt.Printf("Task #%d completed.\n", id)
	},
}

// Briefing Command Group

var briefingCmd = &cobra.Command{
	Use:   "briefing",
	Short: "Generate an AI briefing from your activity and tasks",
}

var briefingMorningCmd = &cobra.Command{
	Use:   "morning",
	Short: "Morning briefing: pending tasks and yesterday's activity",
	Run: func(cmd *cobra.Command, args []string) {
		var tasks []*models.Task
		apiGet("/api/v1/tasks?limit=50", &tasks)

		topTask := "nothing queued"
		if len(tasks) > 0 {
			topTask = tasks[0].Title
		}

		var summary handler.SummaryResponse
		apiGet("/api/v1/summary", &summary)

		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		prompt := llm.MorningBriefingPrompt(len(tasks), topTask,
			float64(summary.ActiveSecondsToday)/3600.0)
		text, err := llmClient().Generate(ctx, prompt, 300)
		if err != nil {
			log.Fatalf("LLM request failed: %v\nIs Ollama running at %s?", err, ollamaURL)
		}
		fmt.Println(strings.TrimSpace(text))
	},
}

var briefingEveningCmd = &cobra.Command{
	Use:   "evening",
	Short: "Evening briefing: today's activity recap",
	Run: func(cmd *cobra.Command, args []string) {
		var summary handler.SummaryResponse
		apiGet("/api/v1/summary", &summary)

		breaksTaken := summary.Acknowledged[string(models.ReminderBreak)]

		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		prompt := llm.EveningBriefingPrompt(
			float64(summary.ActiveSecondsToday)/3600.0,
			summary.SessionCountToday, breaksTaken)
		text, err := llmClient().Generate(ctx, prompt, 300)
		if err != nil {
			log.Fatalf("LLM request failed: %v\nIs Ollama running at %s?", err, ollamaURL)
		}
		fmt.Println(strings.TrimSpace(text))
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the assistant (interactive when no message given)",
	Run: func(cmd *cobra.Command, args []string) {
		client := llmClient()
		messages := []llm.Message{{Role: "system", Content: llm.SystemPersonality}}

		ask := func(text string) {
			messages = append(messages, llm.Message{Role: "user", Content: text})
			ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
			defer cancel()
			reply, err := client.Chat(ctx, messages, 500)
			if err != nil {
				log.Fatalf("LLM request failed: %v\nIs Ollama running at %s?", err, ollamaURL)
			}
			reply = strings.TrimSpace(reply)
			messages = append(messages, llm.Message{Role: "assistant", Content: reply})
			fmt.Println(reply)
		}

		if len(args) > 0 {
			ask(strings.Join(args, " "))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.TestConnection(ctx); err != nil {
			cancel()
			log.Fatalf("Cannot reach Ollama at %s: %v", ollamaURL, err)
		}
		cancel()

		fmt.Println("Interactive chat. Type 'exit' to quit.")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				return
			}
			ask(line)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions, gaps, health events and tasks to JSON",
	Run: func(cmd *cobra.Command, args []string) {
		dbPath, _ := cmd.Flags().GetString("db")
		outputFile, _ := cmd.Flags().GetString("output")

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			log.Fatalf("Database file not found at %s. Ensure the agent has run or specify the path with --db.", dbPath)
		}

		db, err := database.New(dbPath, zap.NewNop())
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()

		exporter := export.New(
			repository.NewSessionRepository(db.DB),
			repository.NewTaskRepository(db.DB),
			journal.New(db.DB, zap.NewNop()),
		)
		dump, err := exporter.WriteFile(outputFile)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}

		fmt.Printf("Exported %d session(s), %d gap(s), %d health event(s), %d task(s) to %s\n",
			len(dump.WorkSessions), len(dump.IdleGaps), len(dump.HealthEvents), len(dump.Tasks), outputFile)
	},
}

func main() {
	rootCmd.PersistentFlags().IntVar(&apiPort, "port", 8733, "Port of the wellness agent control API")
	rootCmd.PersistentFlags().StringVar(&ollamaURL, "ollama-url", "http://localhost:11434", "Base URL of the Ollama server for AI commands")
	rootCmd.PersistentFlags().StringVar(&llmModel, "model", "llama3.2", "Ollama model for AI commands")

	suggestCmd.Flags().Bool("ai", false, "Rephrase the recommendation with the local LLM")
	logBreakCmd.Flags().IntP("minutes", "m", 0, "How long the break was, for the log line")

	tasksListCmd.Flags().IntP("limit", "l", 50, "Maximum number of tasks to list")
	tasksAddCmd.Flags().IntP("priority", "p", 3, "Task priority (1-5, 5 highest)")
	tasksAddCmd.Flags().StringP("notes", "n", "", "Optional task notes")
	tasksAddCmd.Flags().StringP("due", "d", "", "Optional due date (YYYY-MM-DD)")
	tasksAddCmd.Flags().Bool("nl", false, "Extract title/priority/due date from natural language via the local LLM")
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksNextCmd)
	tasksCmd.AddCommand(tasksDoneCmd)

	scheduleCmd.Flags().IntP("days", "d", 7, "Number of days to plan")

	briefingCmd.AddCommand(briefingMorningCmd)
	briefingCmd.AddCommand(briefingEveningCmd)

	exportCmd.Flags().String("db", "wellness.db", "Path to the agent database file")
	exportCmd.Flags().StringP("output", "o", "wellness_export.json", "Output JSON file name")

	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(logBreakCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(briefingCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}
