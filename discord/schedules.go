package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
)

// BotScheduleI defines the interface for scheduled tasks in the bot
type BotScheduleI interface {
	// GetName returns the name of the schedule
	GetName() string
	// GetCronExpression returns the cron expression (with a leading seconds field) for when this schedule should run
	GetCronExpression() string
	// Execute runs the scheduled task and returns an embed to send (or nil if no notification needed)
	Execute(ctx context.Context) (*discordgo.MessageEmbed, error)
}

// GenericBotSchedule is a generic implementation of BotScheduleI
type GenericBotSchedule struct {
	// Name is the schedule's identifier
	Name string
	// CronExpression determines when the schedule will execute
	CronExpression string
	// Handler is the function to execute on schedule
	Handler func(ctx context.Context) (*discordgo.MessageEmbed, error)
}

// GetName returns the schedule's name
func (bs *GenericBotSchedule) GetName() string {
	return bs.Name
}

// GetCronExpression returns the schedule's cron expression
func (bs *GenericBotSchedule) GetCronExpression() string {
	return bs.CronExpression
}

// Execute runs the scheduled task
func (bs *GenericBotSchedule) Execute(ctx context.Context) (*discordgo.MessageEmbed, error) {
	return bs.Handler(ctx)
}

// NewBotSchedule creates a new scheduled task with the given name, cron expression, and handler
func NewBotSchedule(name string, cronExpr string, handler func(ctx context.Context) (*discordgo.MessageEmbed, error)) BotScheduleI {
	return &GenericBotSchedule{
		Name:           name,
		CronExpression: cronExpr,
		Handler:        handler,
	}
}

// embedSender delivers schedule output; *Bot implements it.
type embedSender interface {
	SendEmbed(embed *discordgo.MessageEmbed)
}

// scheduleManager handles scheduling and executing tasks
type scheduleManager struct {
	sender     embedSender
	cron       *cron.Cron
	schedules  []BotScheduleI
	ctx        context.Context
	cancelFunc context.CancelFunc
}

func newScheduleManager(sender embedSender, schedules []BotScheduleI) *scheduleManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &scheduleManager{
		sender:     sender,
		cron:       cron.New(cron.WithSeconds()),
		schedules:  schedules,
		ctx:        ctx,
		cancelFunc: cancel,
	}
}

// start registers every schedule with cron and starts it.
func (sm *scheduleManager) start() error {
	for _, schedule := range sm.schedules {
		sched := schedule
		_, err := sm.cron.AddFunc(sched.GetCronExpression(), func() {
			sm.executeSchedule(sched)
		})
		if err != nil {
			return fmt.Errorf("failed to add schedule %s: %w", sched.GetName(), err)
		}
		slog.Info("registered schedule", "name", sched.GetName(), "cron", sched.GetCronExpression())
	}

	sm.cron.Start()
	slog.Info("schedule manager started", "schedules", len(sm.schedules))
	return nil
}

// executeSchedule runs a scheduled task and sends its embed if it produced one.
func (sm *scheduleManager) executeSchedule(schedule BotScheduleI) {
	slog.Debug("executing schedule", "name", schedule.GetName(), "cron", schedule.GetCronExpression())

	embed, err := schedule.Execute(sm.ctx)
	if err != nil {
		slog.Error("failed to execute schedule",
			"name", schedule.GetName(),
			"error", err)
		return
	}

	if embed == nil {
		return
	}

	sm.sender.SendEmbed(embed)
}

// stop cancels running tasks and waits for cron to wind down.
func (sm *scheduleManager) stop() {
	sm.cancelFunc()
	<-sm.cron.Stop().Done()
	slog.Info("schedule manager stopped")
}
