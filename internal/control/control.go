// Package control implements the interactive command loop. It is the
// thin outer surface over the playback engine and queue controller:
// every command maps onto one engine or controller operation.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/cadence-audio/cadence/internal/errmsg"
	"github.com/cadence-audio/cadence/internal/library"
	"github.com/cadence-audio/cadence/internal/playback"
	"github.com/cadence-audio/cadence/internal/queue"
	"github.com/cadence-audio/cadence/internal/store"
)

// Loop is the interactive control surface.
type Loop struct {
	engine     *playback.Engine
	controller *queue.Controller
	store      *store.Store
	scanner    *library.Scanner
	roots      []string
}

// New creates a control loop over the given components.
func New(engine *playback.Engine, controller *queue.Controller, st *store.Store, scanner *library.Scanner, roots []string) *Loop {
	return &Loop{
		engine:     engine,
		controller: controller,
		store:      st,
		scanner:    scanner,
		roots:      roots,
	}
}

// Run reads commands until EOF, interrupt, or quit.
func (l *Loop) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "cadence> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("play"),
			readline.PcItem("pause"),
			readline.PcItem("toggle"),
			readline.PcItem("stop"),
			readline.PcItem("seek"),
			readline.PcItem("fwd"),
			readline.PcItem("back"),
			readline.PcItem("next"),
			readline.PcItem("prev"),
			readline.PcItem("rate"),
			readline.PcItem("continuous"),
			readline.PcItem("background"),
			readline.PcItem("status"),
			readline.PcItem("playlists"),
			readline.PcItem("playlist"),
			readline.PcItem("playlist-new"),
			readline.PcItem("playlist-rename"),
			readline.PcItem("playlist-delete"),
			readline.PcItem("folders"),
			readline.PcItem("folder"),
			readline.PcItem("tracks"),
			readline.PcItem("scan"),
			readline.PcItem("import"),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	go l.announce(ctx, rl.Stdout())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil { // io.EOF
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := l.dispatch(ctx, fields[0], fields[1:]); err != nil {
			arg := ""
			if len(fields) > 1 {
				arg = fields[1]
			}
			fmt.Println(errmsg.FormatWith(opForCommand(fields[0]), arg, err))
		}
	}
}

// announce prints track changes and playback errors as they happen.
func (l *Loop) announce(ctx context.Context, w io.Writer) {
	sub := l.engine.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case ev := <-sub.TrackChanged:
			if ev.Current != nil {
				fmt.Fprintf(w, "now playing: %s\n", describeTrack(*ev.Current))
			}
		case ev := <-sub.Error:
			fmt.Fprintf(w, "playback error (%s): %v\n", ev.Operation, ev.Err)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "play":
		l.engine.Play()
	case "pause":
		l.engine.Pause()
	case "toggle":
		l.engine.Toggle()
	case "stop":
		l.controller.Stop()
	case "seek":
		if len(args) != 1 {
			return errors.New("usage: seek <position>  (e.g. 90, 1:30, 2m10s)")
		}
		pos, err := parsePosition(args[0])
		if err != nil {
			return err
		}
		l.engine.Seek(pos)
	case "fwd":
		l.engine.SkipForward()
	case "back":
		l.engine.SkipBackward()
	case "next":
		if !l.controller.Advance() {
			fmt.Println("end of queue")
		}
	case "prev":
		if !l.controller.Retreat() {
			fmt.Println("already at the first item")
		}
	case "rate":
		return l.cmdRate(args)
	case "continuous":
		return l.cmdContinuous(args)
	case "background":
		return l.cmdBackground(args)
	case "status":
		l.cmdStatus()
	case "playlists":
		return l.cmdPlaylists()
	case "playlist":
		return l.cmdPlaylist(args)
	case "playlist-new":
		return l.cmdPlaylistNew(args)
	case "playlist-rename":
		return l.cmdPlaylistRename(args)
	case "playlist-delete":
		return l.cmdPlaylistDelete(args)
	case "folders":
		return l.cmdFolders()
	case "folder":
		return l.cmdFolder(args)
	case "tracks":
		return l.cmdTracks()
	case "scan":
		return l.cmdScan(ctx)
	case "import":
		return l.cmdImport(ctx, args)
	case "help":
		printHelp()
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (l *Loop) cmdRate(args []string) error {
	if len(args) == 0 {
		fmt.Printf("rate: %.2fx\n", l.engine.Rate())
		return nil
	}
	rate, err := strconv.ParseFloat(args[0], 64)
	if err != nil || rate <= 0 {
		return fmt.Errorf("invalid rate %q", args[0])
	}
	l.engine.SetRate(rate)
	return nil
}

func (l *Loop) cmdContinuous(args []string) error {
	if len(args) == 0 {
		fmt.Printf("continuous: %v\n", l.engine.Continuous())
		return nil
	}
	switch args[0] {
	case "on":
		l.engine.SetContinuous(true)
	case "off":
		l.engine.SetContinuous(false)
	default:
		return errors.New("usage: continuous [on|off]")
	}
	return nil
}

func (l *Loop) cmdBackground(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: background <on|off>")
	}
	switch args[0] {
	case "on":
		l.engine.SetBackgrounded(true)
	case "off":
		l.engine.SetBackgrounded(false)
	default:
		return errors.New("usage: background <on|off>")
	}
	return nil
}

func (l *Loop) cmdStatus() {
	status := l.engine.Status()
	if status.Track == nil {
		fmt.Println("stopped")
		return
	}
	state := "paused"
	if status.Playing {
		state = "playing"
	}
	fmt.Printf("%s  %s  [%s / %s]  %.2fx\n",
		state, describeTrack(*status.Track),
		formatPosition(status.Position), formatPosition(status.Duration),
		status.Rate)
	if kind, id := l.controller.Active(); kind != queue.KindNone {
		fmt.Printf("queue: %s %d, item %d of %d\n",
			kind, id, l.controller.Index()+1, len(l.controller.Snapshot()))
	}
}

func (l *Loop) cmdPlaylists() error {
	playlists, err := l.store.Playlists()
	if err != nil {
		return err
	}
	if len(playlists) == 0 {
		fmt.Println("no playlists")
		return nil
	}
	for _, p := range playlists {
		fmt.Printf("%4d  %s  (used %s)\n", p.ID, p.Name, humanize.Time(time.Unix(p.LastUsedAt, 0)))
	}
	return nil
}

func (l *Loop) cmdPlaylist(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: playlist <id> [track-id]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid playlist id %q", args[0])
	}
	var trackID int64
	if len(args) > 1 {
		trackID, err = strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid track id %q", args[1])
		}
	}
	return l.controller.StartPlaylist(id, trackID)
}

func (l *Loop) cmdPlaylistNew(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: playlist-new <name>")
	}
	name := strings.Join(args, " ")
	id, err := l.store.CreatePlaylist(name)
	if err != nil {
		return err
	}
	fmt.Printf("playlist %d created\n", id)
	return nil
}

func (l *Loop) cmdPlaylistRename(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: playlist-rename <id> <name>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid playlist id %q", args[0])
	}
	return l.store.RenamePlaylist(id, strings.Join(args[1:], " "))
}

func (l *Loop) cmdPlaylistDelete(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: playlist-delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid playlist id %q", args[0])
	}
	return l.store.DeletePlaylist(id)
}

func (l *Loop) cmdFolders() error {
	folders, err := l.store.Folders()
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		fmt.Println("no folders (run scan first)")
		return nil
	}
	for _, f := range folders {
		fmt.Printf("%4d  %s\n", f.ID, f.Path)
	}
	return nil
}

func (l *Loop) cmdFolder(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: folder <id> [fresh]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid folder id %q", args[0])
	}
	resume := true
	if len(args) > 1 && args[1] == "fresh" {
		resume = false
	}
	return l.controller.StartFolder(id, resume)
}

func (l *Loop) cmdTracks() error {
	tracks, err := l.store.Tracks()
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		fmt.Println("no tracks (run scan first)")
		return nil
	}
	for _, t := range tracks {
		fmt.Printf("%4d  %s  [%s]\n", t.ID, describeStoreTrack(t), formatPosition(t.Duration))
	}
	return nil
}

func (l *Loop) cmdScan(ctx context.Context) error {
	if len(l.roots) == 0 {
		return errors.New("no library roots configured")
	}
	start := time.Now()
	stats, err := l.scanner.Scan(ctx, l.roots)
	if err != nil {
		return err
	}
	log.Info().Int("added", stats.Added).Int("updated", stats.Updated).
		Int("removed", stats.Removed).Msg("scan complete")
	fmt.Printf("scan: %d added, %d updated, %d removed in %s\n",
		stats.Added, stats.Updated, stats.Removed,
		time.Since(start).Round(time.Millisecond))
	return nil
}

func opForCommand(cmd string) errmsg.Op {
	switch cmd {
	case "playlist":
		return errmsg.OpPlaylistStart
	case "playlists":
		return errmsg.OpPlaylistList
	case "playlist-new":
		return errmsg.OpPlaylistCreate
	case "playlist-rename":
		return errmsg.OpPlaylistRename
	case "playlist-delete":
		return errmsg.OpPlaylistDelete
	case "folder":
		return errmsg.OpFolderStart
	case "folders":
		return errmsg.OpFolderList
	case "tracks":
		return errmsg.OpLibraryList
	case "scan":
		return errmsg.OpLibraryScan
	case "import":
		return errmsg.OpImportFile
	case "seek":
		return errmsg.OpPlaybackSeek
	case "rate":
		return errmsg.OpPlaybackRate
	default:
		return errmsg.Op("run " + cmd)
	}
}

func (l *Loop) cmdImport(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: import <file> [move]")
	}
	if len(l.roots) == 0 {
		return errors.New("no library roots configured")
	}
	move := len(args) > 1 && args[1] == "move"
	res, err := l.scanner.Import(ctx, args[0], l.roots[0], move)
	if err != nil {
		return err
	}
	fmt.Printf("imported to %s\n", res.DestPath)
	return nil
}

func printHelp() {
	fmt.Print(`commands:
  play | pause | toggle | stop
  seek <pos>          jump to a position (90, 1:30, 2m10s)
  fwd | back          skip by the configured interval
  next | prev         move within the active queue
  rate [x]            show or set playback rate
  continuous [on|off] auto-advance on track end
  background <on|off> slower position updates for unattended sessions
  status              current track and position
  playlists           list playlists
  playlist <id> [tid] start a playlist, optionally from a track
  playlist-new <name>      create a playlist
  playlist-rename <id> <name>  rename a playlist
  playlist-delete <id>     delete a playlist
  folders             list folders
  folder <id> [fresh] start a folder, resuming unless fresh
  tracks              list library tracks
  scan                rescan the library roots
  import <f> [move]   bring a file into the library
  quit
`)
}
