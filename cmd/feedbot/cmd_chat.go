package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/yoyofushi/feedbot/src/app"
	"github.com/yoyofushi/feedbot/src/executor"
	"github.com/yoyofushi/feedbot/src/storage"
)

// ChatCmd is an interactive terminal session with the feeding assistant.
type ChatCmd struct {
	BabyID    int64  `help:"Existing baby profile id"`
	BabyName  string `help:"Create a baby profile with this name when --baby-id is not set"`
	Birthday  string `help:"Baby birthday (YYYY-MM-DD), required with --baby-name"`
	Gender    string `enum:"unknown,boy,girl" default:"unknown" help:"Baby gender (boy, girl)"`
	UserID    int64  `default:"1" help:"Caregiver user id recorded on tool writes"`
	ShowTools bool   `help:"Print tool result payloads"`
}

// Run executes the chat command.
func (c *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}
	logger := createCLILogger(cfg.Logging.Level)

	cctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appInstance, err := app.New(cctx, cfg, logger)
	if err != nil {
		return err
	}
	defer appInstance.Close()

	baby, err := c.resolveBaby(cctx, appInstance)
	if err != nil {
		return err
	}

	conversationID := "conv_" + uuid.New().String()
	sink := executor.NewConsoleSink(os.Stdout, executor.ConsoleSinkConfig{
		ShowToolResults: c.ShowTools,
	})

	titleStyle := lipgloss.NewStyle().Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#5fafff")).Bold(true)

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s的喂养助手", baby.Name)))
	fmt.Println(mutedStyle.Render("会话 " + conversationID))
	fmt.Println(mutedStyle.Render("输入 exit 退出"))
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("你> "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		turn := &executor.TurnRequest{
			ConversationID: conversationID,
			BabyID:         baby.ID,
			UserID:         c.UserID,
			Message:        line,
		}
		if err := appInstance.Engine.RunTurn(cctx, turn, sink); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			fmt.Fprintf(os.Stderr, "turn failed: %v\n", err)
		}
		if cctx.Err() != nil {
			break
		}
	}

	return scanner.Err()
}

// resolveBaby loads the baby profile for the session, creating one when
// the bootstrap flags are set.
func (c *ChatCmd) resolveBaby(ctx context.Context, appInstance *app.App) (*storage.Baby, error) {
	if c.BabyID > 0 {
		baby, err := appInstance.Store.GetBabyByID(ctx, c.BabyID)
		if err != nil {
			return nil, fmt.Errorf("failed to load baby %d: %w", c.BabyID, err)
		}
		if baby == nil {
			return nil, fmt.Errorf("baby %d not found", c.BabyID)
		}
		return baby, nil
	}

	if c.BabyName == "" {
		return nil, errors.New("a baby profile is required: pass --baby-id, or --baby-name with --birthday")
	}
	if c.Birthday == "" {
		return nil, errors.New("--birthday is required when creating a baby profile")
	}

	birthday, err := storage.ParseDate(c.Birthday)
	if err != nil {
		return nil, fmt.Errorf("invalid birthday: %w", err)
	}

	baby := &storage.Baby{
		Name:      c.BabyName,
		Birthday:  birthday,
		Gender:    genderCode(c.Gender),
		CreatedBy: c.UserID,
	}
	if err := appInstance.Store.CreateBaby(ctx, baby); err != nil {
		return nil, fmt.Errorf("failed to create baby profile: %w", err)
	}

	appInstance.Logger.Info("created baby profile", "baby_id", baby.ID, "name", baby.Name)
	return baby, nil
}

func genderCode(s string) int {
	switch s {
	case "boy":
		return storage.GenderBoy
	case "girl":
		return storage.GenderGirl
	default:
		return storage.GenderUnknown
	}
}
