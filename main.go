package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"boltalka/internal/api"
	"boltalka/internal/commands"
	"boltalka/internal/config"
	"boltalka/internal/content"
	"boltalka/internal/engine"
	"boltalka/internal/grouping"
	"boltalka/internal/models"
	"boltalka/internal/session"
	"boltalka/internal/transport"

	"golang.org/x/sync/errgroup"
)

var errQuit = errors.New("quit")

func run(ctx context.Context) error {
	register := flag.String("register", "", "Username to register (creates the user and signs in)")
	phone := flag.String("phone", "", "Phone number for -register")
	logout := flag.Bool("logout", false, "Clear the persisted session and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if *register != "" {
		return commands.Register(ctx, *register, *phone, cfg)
	}

	store, err := session.Open(cfg.DBFile)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if *logout {
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	}

	self, err := store.User()
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return errors.New("not signed in, run with -register <username> first")
		}
		return err
	}

	client := api.NewClient(ctx, api.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.HTTPTimeout,
		HistoryTTL: cfg.HistoryTTL,
	})

	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	// The engine is built before the connection so the read pump never sees
	// a half-initialized dispatch target; sends only start after the dial.
	var ch *transport.Channel
	eng := engine.New(engine.Config{
		Self:      self,
		Send:      func(data []byte) error { return ch.Send(data) },
		Directory: client,
		OnChange:  notify,
	})

	ch, err = transport.Dial(ctx, cfg.WSURL, eng.HandleFrame)
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	eng.LoadRooms(ctx)

	fmt.Printf("Signed in as %s. Type /help for commands.\n", self.Name)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case <-ch.Done():
			return errors.New("connection closed")
		case <-gCtx.Done():
			return nil
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-changed:
				render(eng)
			case <-gCtx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		defer func() { _ = ch.Close() }()
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := handleLine(gCtx, eng, store, scanner.Text()); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
			select {
			case <-gCtx.Done():
				return nil
			default:
			}
		}
		return scanner.Err()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func handleLine(ctx context.Context, eng *engine.Engine, store *session.Store, line string) error {
	cmd, arg := parseCommand(line)

	switch cmd {
	case "":
		return nil

	case "/help":
		fmt.Println("/rooms, /join <room-id>, /export <file>, /logout, /quit")

	case "/rooms":
		for _, entry := range eng.Rooms() {
			status := ""
			if eng.IsTyping(entry.Room.ID) {
				status = " (typing...)"
			}
			fmt.Printf("  %s%s\n", entry.Room.ID, status)
		}

	case "/join":
		for _, entry := range eng.Rooms() {
			if entry.Room.ID == arg {
				eng.SelectRoom(ctx, entry.Room)
				fmt.Println("Loading conversation...")
				return nil
			}
		}
		fmt.Printf("unknown room %q\n", arg)

	case "/export":
		if arg == "" {
			fmt.Println("usage: /export <file>")
			return nil
		}
		room, ok := eng.ActiveRoom()
		if !ok {
			fmt.Println("no room selected")
			return nil
		}
		html, err := content.Transcript(room.ID, eng.DisplayGroups())
		if err != nil {
			return err
		}
		if err := os.WriteFile(arg, []byte(html), 0644); err != nil {
			return err
		}
		fmt.Printf("Transcript written to %s\n", arg)

	case "/logout":
		if err := store.Clear(); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return errQuit

	case "/quit":
		return errQuit

	default:
		if strings.HasPrefix(cmd, "/") {
			fmt.Printf("unknown command %s\n", cmd)
			return nil
		}
		// The prompt is the input: mark it focused before sending so the
		// typing edges fire like a focus/blur pair around the message.
		eng.FocusIn()
		if err := eng.Submit(line); err != nil {
			var verr *engine.ValidationError
			if errors.As(err, &verr) {
				fmt.Println(verr.Reason)
				return nil
			}
			return err
		}
	}

	return nil
}

// parseCommand splits an input line into a leading /command and its argument.
// A plain message line is returned whole in cmd with an empty arg; callers
// tell the two apart by the "/" prefix.
func parseCommand(line string) (cmd, arg string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return line, ""
	}
	cmd, arg, _ = strings.Cut(line, " ")
	return cmd, strings.TrimSpace(arg)
}

func render(eng *engine.Engine) {
	room, ok := eng.ActiveRoom()
	if !ok {
		return
	}

	fmt.Println("----")
	if eng.IsLoading() {
		fmt.Println("Loading conversation...")
	}
	for _, group := range eng.DisplayGroups() {
		prefix := "you"
		if group.Direction == grouping.Incoming {
			prefix = group.AvatarText
		}
		for _, msg := range group.Messages {
			fmt.Printf("[%s] %s\n", prefix, msg.Content)
		}
	}
	if eng.IsTyping(room.ID) {
		fmt.Println("Typing...")
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Application error: %v", err)
	}
}
