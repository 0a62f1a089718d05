package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"secret-santa/internal/config"
	"secret-santa/internal/delivery"
	"secret-santa/internal/draw"
	"secret-santa/internal/history"
	"secret-santa/internal/mailer"
	"secret-santa/internal/models"
	"secret-santa/internal/registry"
	"secret-santa/internal/santa"
	"secret-santa/internal/whatsapp"
)

func main() {
	fmt.Println("🎅 Secret Santa — Couples Aware")
	fmt.Println("===============================")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	var hist *history.Store
	if cfg.HistoryPath != "" {
		hist, err = history.Open(cfg.HistoryPath)
		if err != nil {
			fmt.Printf("Error opening history: %v\n", err)
			os.Exit(1)
		}
		defer hist.Close()
	}

	var gateway delivery.Gateway
	var whatsappService *whatsapp.Service
	switch cfg.Channel {
	case config.ChannelEmail:
		gateway, err = mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			DryRun:   cfg.SMTPDryRun,
		})
		if err != nil {
			fmt.Printf("Error configuring email channel: %v\n", err)
			os.Exit(1)
		}
	case config.ChannelWhatsApp:
		whatsappService, err = whatsapp.NewService(&whatsapp.Config{
			DataDir:     cfg.WhatsAppDataDir,
			CountryCode: cfg.CountryCode,
		})
		if err != nil {
			fmt.Printf("Error initializing WhatsApp service: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Connecting to WhatsApp...")
		if err := whatsappService.Connect(); err != nil {
			fmt.Printf("Error connecting to WhatsApp: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Connected to WhatsApp!")
		gateway = whatsappService
	}

	if cfg.SuperSecret {
		fmt.Println("🤫 Super secret mode is active: the draw will not be shown.")
	}

	reg := registry.New()
	engine := draw.NewEngine(cfg.MaxAttempts, nil)
	service := santa.New(reg, engine, hist, gateway, santa.Config{
		Conceal:      cfg.SuperSecret,
		HistoryYears: cfg.HistoryYears,
	})

	// Disconnect cleanly on Ctrl-C.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\n\nShutting down...")
		if whatsappService != nil {
			whatsappService.Disconnect()
		}
		os.Exit(0)
	}()

	runCLI(reg, service, hist != nil)

	if whatsappService != nil {
		whatsappService.Disconnect()
	}
	fmt.Println("Goodbye! 👋")
}

func runCLI(reg *registry.Registry, service *santa.Service, hasHistory bool) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. Add couple")
		fmt.Println("  2. Add single")
		fmt.Println("  3. View participants")
		fmt.Println("  4. Draw names")
		fmt.Println("  5. Send notifications")
		fmt.Println("  6. Record draw to history")
		fmt.Println("  7. Reset roster")
		fmt.Println("  8. Exit")
		fmt.Print("\nEnter command (1-8): ")

		if !scanner.Scan() {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			addCouple(scanner, reg)
		case "2":
			addSingle(scanner, reg)
		case "3":
			viewParticipants(reg)
		case "4":
			performDraw(service)
		case "5":
			sendNotifications(service)
		case "6":
			recordHistory(scanner, service, hasHistory)
		case "7":
			reg.Reset()
			fmt.Println("Roster cleared.")
		case "8":
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func promptPerson(scanner *bufio.Scanner, label string) (registry.PersonInput, bool) {
	fmt.Printf("%s name: ", label)
	if !scanner.Scan() {
		return registry.PersonInput{}, false
	}
	name := strings.TrimSpace(scanner.Text())

	fmt.Printf("%s email (blank for none): ", label)
	if !scanner.Scan() {
		return registry.PersonInput{}, false
	}
	email := strings.TrimSpace(scanner.Text())

	fmt.Printf("%s phone (blank for none): ", label)
	if !scanner.Scan() {
		return registry.PersonInput{}, false
	}
	phone := strings.TrimSpace(scanner.Text())

	return registry.PersonInput{Name: name, Email: email, Phone: phone}, true
}

func addCouple(scanner *bufio.Scanner, reg *registry.Registry) {
	a, ok := promptPerson(scanner, "First partner")
	if !ok {
		return
	}
	b, ok := promptPerson(scanner, "Second partner")
	if !ok {
		return
	}
	if err := reg.AddCouple(a, b); err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("✅ Added couple %s & %s\n", a.Name, b.Name)
}

func addSingle(scanner *bufio.Scanner, reg *registry.Registry) {
	p, ok := promptPerson(scanner, "Participant")
	if !ok {
		return
	}
	if err := reg.AddSingle(p); err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("✅ Added %s\n", p.Name)
}

func viewParticipants(reg *registry.Registry) {
	participants := reg.Participants()
	if len(participants) == 0 {
		fmt.Println("\nNo participants yet.")
		return
	}

	fmt.Printf("\n📋 Participants (%d total):\n", len(participants))
	fmt.Println(strings.Repeat("-", 60))
	for _, p := range participants {
		kind := "single"
		if p.CoupleID != nil {
			kind = "couple"
		}
		fmt.Printf("Name: %s (%s)\n", p.Name, kind)
		if p.Email != "" {
			fmt.Printf("Email: %s\n", p.Email)
		}
		if p.Phone != "" {
			fmt.Printf("Phone: %s\n", p.Phone)
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}

func performDraw(service *santa.Service) {
	result, err := service.Draw()
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInfeasible):
			fmt.Println("❌ No valid assignment could be found with the current names.")
			fmt.Println("   Tip: add more participants or relax the history exclusion.")
		case errors.Is(err, models.ErrInvalidConfiguration):
			fmt.Printf("❌ Invalid roster: %v\n", err)
		default:
			fmt.Printf("❌ Draw failed: %v\n", err)
		}
		return
	}

	if result.Concealed {
		fmt.Printf("🤫 The draw is done for %d participants, but it stays secret.\n", result.Count)
		fmt.Println("   Use 'Send notifications' to tell everyone who they have.")
		return
	}

	fmt.Printf("\n🎁 Assignment (%d participants):\n", result.Count)
	fmt.Println(strings.Repeat("-", 60))
	for _, pair := range result.Pairs {
		fmt.Printf("%s → %s\n", pair.Giver, pair.Recipient)
	}
	fmt.Println(strings.Repeat("-", 60))
}

func sendNotifications(service *santa.Service) {
	if !service.HasAssignment() {
		fmt.Println("Draw names first.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sent, err := service.Send(ctx)
	if err != nil {
		if errors.Is(err, santa.ErrNoGateway) {
			fmt.Println("No delivery channel configured. Set SANTA_CHANNEL to email or whatsapp.")
			return
		}
		fmt.Printf("❌ Error sending notifications: %v\n", err)
		return
	}
	fmt.Printf("✅ Notifications sent to %d participants.\n", sent)
}

func recordHistory(scanner *bufio.Scanner, service *santa.Service, hasHistory bool) {
	if !hasHistory {
		fmt.Println("No history store configured. Set SANTA_HISTORY_PATH to enable it.")
		return
	}
	if !service.HasAssignment() {
		fmt.Println("Draw names first.")
		return
	}

	fmt.Printf("Year to record under (default %d): ", time.Now().Year())
	if !scanner.Scan() {
		return
	}
	year := time.Now().Year()
	if text := strings.TrimSpace(scanner.Text()); text != "" {
		n, err := strconv.Atoi(text)
		if err != nil {
			fmt.Println("Invalid year.")
			return
		}
		year = n
	}

	if err := service.RecordHistory(year); err != nil {
		fmt.Printf("❌ Error recording draw: %v\n", err)
		return
	}
	fmt.Printf("✅ Draw recorded under %d.\n", year)
}
