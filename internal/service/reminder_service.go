package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// reminderWindowMinutes is how far before a task's start the per-minute
// reminders run.
const reminderWindowMinutes = 10

// ReminderService drives outbound notifications: the per-minute reminder
// sweep and the hourly status report. Send failures are logged and never
// propagated.
type ReminderService struct {
	taskRepo     *repository.TaskRepository
	noteRepo     *repository.NoteRepository
	settingsRepo *repository.SettingsRepository
	notifier     Notifier
}

func NewReminderService(taskRepo *repository.TaskRepository, noteRepo *repository.NoteRepository, settingsRepo *repository.SettingsRepository, notifier Notifier) *ReminderService {
	return &ReminderService{taskRepo: taskRepo, noteRepo: noteRepo, settingsRepo: settingsRepo, notifier: notifier}
}

// Sweep sends reminders for tasks starting within the next ten minutes (one
// message per distinct minute, deduped across runs) and for notes whose
// reminder interval has elapsed.
//
// Dedupe markers are written one row at a time; the sweep never rewrites a
// whole collection, so a task completion or note edit landing mid-sweep is
// never overwritten with the sweep's stale copy.
func (s *ReminderService) Sweep(ctx context.Context, now time.Time) error {
	if err := s.sweepTasks(ctx, now); err != nil {
		return err
	}
	return s.sweepNotes(ctx, now)
}

func (s *ReminderService) sweepTasks(ctx context.Context, now time.Time) error {
	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if !task.NotifyEnabled || task.Completed {
			continue
		}
		minutesUntil := int(task.StartTime.Sub(now).Minutes())
		switch {
		case minutesUntil >= 1 && minutesUntil <= reminderWindowMinutes:
			if task.LastNotifiedMinute == minutesUntil {
				continue
			}
			s.send(TaskReminderMessage(task, minutesUntil))
			if err := s.taskRepo.UpdateReminderMarker(ctx, task.ID, minutesUntil); err != nil {
				return err
			}
		case minutesUntil == 0 && task.LastNotifiedMinute != 0:
			s.send(TaskStartedMessage(task))
			if err := s.taskRepo.UpdateReminderMarker(ctx, task.ID, 0); err != nil {
				return err
			}
		case minutesUntil < 0 && task.LastNotifiedMinute > 0:
			// The minute-0 sweep was missed; clear the stale countdown value
			// so it cannot suppress a reminder for the next occurrence.
			if err := s.taskRepo.UpdateReminderMarker(ctx, task.ID, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *ReminderService) sweepNotes(ctx context.Context, now time.Time) error {
	notes, err := s.noteRepo.LoadAll(ctx)
	if err != nil {
		return err
	}

	for _, note := range notes {
		if !note.NotifyEnabled || note.NotifyInterval <= 0 {
			continue
		}
		if note.LastNotified != nil {
			elapsed := now.Sub(*note.LastNotified)
			if elapsed < time.Duration(note.NotifyInterval)*time.Hour {
				continue
			}
		}
		s.send(NoteReminderMessage(note, now))
		if err := s.noteRepo.UpdateLastNotified(ctx, note.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// HourlyReport sends the task status report when the settings toggle is on.
func (s *ReminderService) HourlyReport(ctx context.Context, now time.Time) error {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.HourlyReport {
		return nil
	}
	tasks, err := s.taskRepo.LoadAll(ctx)
	if err != nil {
		return err
	}
	s.send(StatusReportMessage(tasks, now))
	return nil
}

func (s *ReminderService) send(text string) {
	if err := s.notifier.Send(text); err != nil {
		log.Printf("[warn] notify: %v", err)
	}
}

// StatusReportMessage summarizes today's open tasks with their windows and
// subtask progress.
func StatusReportMessage(tasks []*model.Task, now time.Time) string {
	today := midnight(now)
	var todays []*model.Task
	for _, task := range tasks {
		if midnight(task.StartTime).Equal(today) && !task.Completed {
			todays = append(todays, task)
		}
	}

	var b strings.Builder
	b.WriteString("📊 <b>Task Status Report</b>\n")
	b.WriteString(fmt.Sprintf("🕐 Time: %s\n", now.Format("15:04")))
	b.WriteString(fmt.Sprintf("📅 Date: %s\n", now.Format("January 2, 2006")))

	if len(todays) == 0 {
		b.WriteString("✅ No active tasks for today!")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("📋 Total Tasks: %d\n\n", len(todays)))
	for _, task := range todays {
		progress := ""
		if len(task.Subtasks) > 0 {
			done := 0
			for _, st := range task.Subtasks {
				if st.Completed {
					done++
				}
			}
			progress = fmt.Sprintf(" (%d/%d)", done, len(task.Subtasks))
		}
		b.WriteString(fmt.Sprintf("⏳ <b>%s</b>\n", html.EscapeString(task.Title)))
		b.WriteString(fmt.Sprintf("   ⏰ %s%s\n", FormatTimeRange(task.StartTime, task.EndTime), progress))
	}
	b.WriteString(fmt.Sprintf("\n📈 Pending: %d", len(todays)))

	return b.String()
}

// TaskReminderMessage announces a task starting in the given number of
// minutes.
func TaskReminderMessage(task *model.Task, minutesUntil int) string {
	var b strings.Builder
	b.WriteString("⏰ <b>Task Reminder</b>\n")
	b.WriteString(fmt.Sprintf("📝 <b>%s</b>\n", html.EscapeString(task.Title)))
	if minutesUntil == 1 {
		b.WriteString("🕐 Starts in <b>1 minute</b>\n")
	} else {
		b.WriteString(fmt.Sprintf("🕐 Starts in <b>%d minutes</b>\n", minutesUntil))
	}
	b.WriteString(fmt.Sprintf("⏰ %s", FormatTimeRange(task.StartTime, task.EndTime)))
	return b.String()
}

// TaskStartedMessage announces that a task's window has opened.
func TaskStartedMessage(task *model.Task) string {
	return fmt.Sprintf("🚀 <b>Task Started</b>\n📝 <b>%s</b>\n⏰ %s",
		html.EscapeString(task.Title), FormatTimeRange(task.StartTime, task.EndTime))
}

// TaskAddedMessage confirms a newly created task.
func TaskAddedMessage(task *model.Task) string {
	var b strings.Builder
	b.WriteString("✅ <b>New Task Added</b>\n")
	b.WriteString(fmt.Sprintf("📝 <b>%s</b>\n", html.EscapeString(task.Title)))
	b.WriteString(fmt.Sprintf("📅 Date: %s\n", task.StartTime.Format("January 2, 2006")))
	b.WriteString(fmt.Sprintf("🕐 Time: %s\n", task.StartTime.Format("3:04 PM")))
	if task.NotifyEnabled {
		b.WriteString("🔔 Notifications: Enabled (10 reminders before start)")
	}
	return strings.TrimSpace(b.String())
}

// TaskCompletedMessage confirms a completion.
func TaskCompletedMessage(task *model.Task, now time.Time) string {
	return fmt.Sprintf("✅ <b>Task Completed!</b>\n📝 <b>%s</b>\n⏰ Time: %s\n📅 Date: %s",
		html.EscapeString(task.Title), now.Format("3:04 PM"), now.Format("January 2, 2006"))
}

// SubtaskCompletedMessage confirms a subtask completion.
func SubtaskCompletedMessage(subtask *model.Subtask, parent *model.Task, now time.Time) string {
	return fmt.Sprintf("✅ <b>Subtask Completed</b>\n📝 <b>%s</b>\n📋 Parent Task: %s\n⏰ Time: %s",
		html.EscapeString(subtask.Title), html.EscapeString(parent.Title), now.Format("3:04 PM"))
}

// NoteAddedMessage confirms a newly created note.
func NoteAddedMessage(note *model.Note) string {
	var b strings.Builder
	b.WriteString("📝 <b>New Note Added</b>\n")
	b.WriteString(fmt.Sprintf("📌 <b>%s</b>\n", html.EscapeString(note.Title)))
	if note.NotifyEnabled && note.NotifyInterval > 0 {
		b.WriteString(fmt.Sprintf("🔔 Reminders every %d hours", note.NotifyInterval))
	} else {
		b.WriteString("🔕 No reminders set")
	}
	return b.String()
}

// NoteReminderMessage is the periodic note reminder.
func NoteReminderMessage(note *model.Note, now time.Time) string {
	var b strings.Builder
	b.WriteString("📝 <b>Note Reminder</b>\n")
	b.WriteString(fmt.Sprintf("📌 <b>%s</b>\n", html.EscapeString(note.Title)))
	b.WriteString(fmt.Sprintf("🕐 Interval: Every %d hours\n", note.NotifyInterval))
	b.WriteString(fmt.Sprintf("⏰ Time: %s", now.Format("15:04")))
	if note.Description != "" {
		desc := note.Description
		if len(desc) > 200 {
			desc = desc[:200] + "..."
		}
		b.WriteString("\n\n" + html.EscapeString(desc))
	}
	return b.String()
}

// HourlyReportToggledMessage confirms the settings change.
func HourlyReportToggledMessage(enabled bool) string {
	if enabled {
		return "📊 <b>Hourly Reports Enabled</b>\nYou'll receive task status reports every hour"
	}
	return "📊 <b>Hourly Reports Disabled</b>\nHourly task reports have been turned off"
}
