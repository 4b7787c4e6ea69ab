package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mikimas/pikudo-client/clients"
	"github.com/mikimas/pikudo-client/internal/final"
	"github.com/mikimas/pikudo-client/internal/models"
	"github.com/mikimas/pikudo-client/internal/notify"
	"github.com/mikimas/pikudo-client/internal/room"
	"github.com/mikimas/pikudo-client/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	level, err := zerolog.ParseLevel(config.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	store, err := storage.Open(config.Client.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	services := setupServices(config, store)

	unsubscribe := services.Bus.Subscribe(func(n notify.Notice) {
		fmt.Printf("[%s] %s\n", n.Title, n.Message)
	})
	defer unsubscribe()

	ctx := context.Background()

	if services.Gate.MustUpdate(ctx) {
		fmt.Println("Hay una nueva versión de PIKUDO. Actualiza la app para seguir jugando.")
		return
	}

	resumeCode, _ := services.Session.Resume(ctx)

	runLoop(ctx, config, services, resumeCode)
}

type loop struct {
	config   *Config
	services *Services

	sync   *room.Synchronizer
	cancel context.CancelFunc
	done   chan struct{}
}

func runLoop(ctx context.Context, config *Config, services *Services, resumeCode string) {
	l := &loop{config: config, services: services}
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("pikudo> type 'help' for commands")
	if resumeCode != "" {
		fmt.Printf("resuming room %s\n", resumeCode)
		l.startWatch(resumeCode)
	}
	for {
		fmt.Print("pikudo> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			break
		}
		l.dispatch(ctx, fields[0], fields[1:])
	}
	l.stopWatch()
}

func (l *loop) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		fmt.Println("commands: register <nickname> | create [rounds] | join <code> | watch | status |")
		fmt.Println("          start [rounds] | leave | transfer | close | end |")
		fmt.Println("          complete <challenge-id> | upload <challenge-id> <file> | redo <challenge-id> |")
		fmt.Println("          final <summary|players|challenges|player <id>|challenge <id>|save ...> |")
		fmt.Println("          version | api [url] | quit")
	case "register":
		if len(args) < 1 {
			fmt.Println("usage: register <nickname>")
			return
		}
		if err := l.services.Session.Register(ctx, args[0]); err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		fmt.Println("registered")
	case "create":
		rounds := l.services.Identity.RoundsPreference(4)
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				rounds = n
				if n >= 1 && n <= 10 {
					if err := l.services.Identity.SetRoundsPreference(n); err != nil {
						log.Warn().Err(err).Msg("could not persist rounds preference")
					}
				}
			}
		}
		code, err := l.services.Session.CreateRoom(ctx, rounds)
		if err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		fmt.Printf("room %s created\n", code)
		l.startWatch(code)
	case "join":
		if len(args) < 1 {
			fmt.Println("usage: join <code>")
			return
		}
		code := strings.ToUpper(args[0])
		if err := l.services.Session.JoinRoom(ctx, code); err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		fmt.Printf("joined room %s\n", code)
		l.startWatch(code)
	case "watch":
		code, ok := l.services.Identity.LastRoom()
		if !ok {
			fmt.Println("no active room, use create or join first")
			return
		}
		l.startWatch(code)
	case "status":
		l.printStatus()
	case "start":
		l.withSync(func(s *room.Synchronizer) error {
			rounds := 0
			if len(args) > 0 {
				if n, err := strconv.Atoi(args[0]); err == nil {
					rounds = n
				}
			}
			return s.Start(ctx, rounds)
		})
	case "leave":
		l.withSync(func(s *room.Synchronizer) error { return s.Leave(ctx) })
		l.stopWatch()
	case "transfer":
		l.withSync(func(s *room.Synchronizer) error { return s.TransferAndLeave(ctx) })
		l.stopWatch()
	case "close":
		l.withSync(func(s *room.Synchronizer) error { return s.Close(ctx) })
		l.stopWatch()
	case "end":
		l.withSync(func(s *room.Synchronizer) error { return s.End(ctx) })
	case "complete":
		if len(args) < 1 {
			fmt.Println("usage: complete <challenge-id>")
			return
		}
		if apiErr := l.services.Client.CompleteChallenge(ctx, args[0]); apiErr != nil {
			l.services.Bus.Publish(apiErr.Code)
			return
		}
		fmt.Println("challenge completed")
	case "upload":
		if len(args) < 2 {
			fmt.Println("usage: upload <challenge-id> <file>")
			return
		}
		l.uploadCommand(ctx, args[0], args[1])
	case "redo":
		if len(args) < 1 {
			fmt.Println("usage: redo <challenge-id>")
			return
		}
		if apiErr := l.services.Client.DeleteChallengeMedia(ctx, args[0]); apiErr != nil {
			l.services.Bus.Publish(apiErr.Code)
			return
		}
		fmt.Println("submission removed, challenge reopened")
	case "final":
		l.finalCommand(ctx, args)
	case "api":
		if len(args) < 1 {
			fmt.Printf("api base: %s\n", l.services.Client.BaseURL())
			return
		}
		base := clients.NormalizeBaseURL(args[0])
		if err := l.services.Store.Set(storage.KeyBaseURL, base); err != nil {
			fmt.Printf("could not persist api base: %v\n", err)
			return
		}
		fmt.Printf("api base set to %s, restart to apply\n", base)
	case "version":
		info, apiErr := l.services.Client.AppVersion(ctx)
		if apiErr != nil {
			l.services.Bus.Publish(apiErr.Code)
			return
		}
		fmt.Printf("revision=%s client=%s\n", info.RevisionVersion, info.ClientVersion)
	default:
		fmt.Printf("unknown command %q\n", cmd)
	}
}

func (l *loop) startWatch(code string) {
	l.stopWatch()

	syncCtx, cancel := context.WithCancel(context.Background())
	s := room.NewSynchronizer(room.Config{
		Client:       l.services.Client,
		Identity:     l.services.Identity,
		Notifier:     l.services.Bus,
		RoomCode:     code,
		PollInterval: time.Duration(l.config.Client.PollSeconds) * time.Second,
		OnVanished: func() {
			fmt.Println("room no longer exists, returning to lobby")
		},
	})

	l.sync = s
	l.cancel = cancel
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		s.Run(syncCtx)
	}()
	fmt.Printf("watching room %s\n", code)
}

func (l *loop) stopWatch() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
	l.sync = nil
	l.cancel = nil
	l.done = nil
}

func (l *loop) withSync(fn func(*room.Synchronizer) error) {
	if l.sync == nil {
		fmt.Println("not watching a room, use watch first")
		return
	}
	if err := fn(l.sync); err != nil {
		l.services.Bus.Publish(err.Error())
	}
}

func (l *loop) printStatus() {
	if l.sync == nil {
		fmt.Println("not watching a room")
		return
	}
	snap := l.sync.Snapshot()
	fmt.Printf("room=%s state=%s role=%s rounds=%d players=%d\n",
		l.sync.RoomCode(), snap.State, snap.Role, snap.Rounds, len(snap.Players))
	if snap.NextBlockInSec > 0 {
		fmt.Printf("next block in %ds\n", snap.NextBlockInSec)
	}
	for _, leader := range snap.Leaders {
		fmt.Printf("  %s: %d\n", leader.Nickname, leader.Points)
	}
	for _, ch := range snap.Challenges {
		mark := " "
		if ch.Completed {
			mark = "x"
		}
		fmt.Printf("  [%s] %s\n", mark, ch.Title)
	}
}

func (l *loop) uploadCommand(ctx context.Context, challengeID, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("cannot read %s: %v\n", path, err)
		return
	}
	mimeType := "application/octet-stream"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		mimeType = "image/jpeg"
	case ".png":
		mimeType = "image/png"
	case ".mp4":
		mimeType = "video/mp4"
	}
	apiErr := l.services.Client.UploadChallengeMedia(ctx, challengeID, filepath.Base(path), mimeType, data, func(pct int) {
		fmt.Printf("\ruploading %d%%", pct)
	})
	fmt.Println()
	if apiErr != nil {
		l.services.Bus.Publish(apiErr.Code)
		return
	}
	fmt.Println("upload complete")
}

func (l *loop) finalCommand(ctx context.Context, args []string) {
	code, ok := l.services.Identity.LastRoom()
	if !ok {
		fmt.Println("no room to summarize")
		return
	}
	app := l.services.newFinalApp(code)

	mode := "summary"
	if len(args) > 0 {
		mode = args[0]
	}
	switch mode {
	case "summary":
		summary, err := app.Summary(ctx)
		if err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		fmt.Printf("room %s final standings:\n", summary.RoomName)
		for i, leader := range summary.Leaders {
			fmt.Printf("  %d. %s - %d\n", i+1, leader.Nickname, leader.Points)
		}
	case "players":
		players, err := app.Players(ctx)
		if err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		for _, p := range players {
			fmt.Printf("  %s (%s)\n", p.Nickname, p.ID)
		}
	case "challenges":
		challenges, err := app.Challenges(ctx)
		if err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		for _, ch := range challenges {
			fmt.Printf("  %s (%s)\n", ch.Title, ch.ID)
		}
	case "player":
		if len(args) < 2 {
			fmt.Println("usage: final player <player-id>")
			return
		}
		media, err := app.PlayerMedia(ctx, args[1])
		if err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		saved, _ := app.Saved(final.ScopePlayer, args[1])
		fmt.Printf("%s submitted %d items:\n", media.Player.Nickname, len(media.Completed))
		for _, item := range media.Completed {
			printMediaItem(item, saved[item.ID])
		}
	case "challenge":
		if len(args) < 2 {
			fmt.Println("usage: final challenge <challenge-id>")
			return
		}
		media, err := app.ChallengeMedia(ctx, args[1])
		if err != nil {
			l.services.Bus.Publish(err.Error())
			return
		}
		saved, _ := app.Saved(final.ScopeChallenge, args[1])
		fmt.Printf("%s has %d submissions:\n", media.Challenge.Title, len(media.Media))
		for _, item := range media.Media {
			printMediaItem(item, saved[item.ID])
		}
	case "save":
		if len(args) < 4 {
			fmt.Println("usage: final save <player|challenge> <scope-id> <media-id>")
			return
		}
		mode := final.ScopePlayer
		if args[1] == "challenge" {
			mode = final.ScopeChallenge
		}
		if err := app.MarkSaved(mode, args[2], args[3]); err != nil {
			fmt.Printf("could not mark saved: %v\n", err)
			return
		}
		fmt.Println("marked as saved")
	default:
		fmt.Println("usage: final <summary|players|challenges|player <id>|challenge <id>|save ...>")
	}
}

func printMediaItem(item models.MediaItem, saved bool) {
	mark := " "
	if saved {
		mark = "*"
	}
	line := fmt.Sprintf("  [%s] %s (%s)", mark, item.Title, item.ID)
	if item.Media != nil {
		line += " " + item.Media.URL
	}
	fmt.Println(line)
}
