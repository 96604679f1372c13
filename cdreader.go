// This file is part of cdreader.
//
// cdreader is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cdreader is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cdreader.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/jetsetilly/cdreader/cdrom/cdda"
	"github.com/jetsetilly/cdreader/cdrom/cdif"
	"github.com/jetsetilly/cdreader/cdrom/preferences"
	"github.com/jetsetilly/cdreader/commands"
	"github.com/jetsetilly/cdreader/curated"
	"github.com/jetsetilly/cdreader/easyterm"
	"github.com/jetsetilly/cdreader/environment"
	"github.com/jetsetilly/cdreader/logger"
	"github.com/jetsetilly/cdreader/modalflag"
	"github.com/jetsetilly/cdreader/player"
	"github.com/jetsetilly/cdreader/prefs"
	"github.com/jetsetilly/cdreader/version"
)

// exit values
const (
	exitOK     = 0
	exitParse  = 10
	exitPrefs  = 15
	exitFailed = 20
)

func main() {
	// ctrl-c cancels the context. modes that run until interrupted watch for
	// this and end gracefully
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitVal := launch(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(exitVal)
}

func launch(ctx context.Context, args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)

	showVersion := md.AddBool("version", false, "print version information and exit")
	log := md.AddBool("log", false, "echo log to stderr")
	prefsFile := md.AddString("prefsfile", "", "use an alternative preferences file")
	override := md.AddString("prefs", "", "override preferences for this run (key::value; key::value)")

	md.AddSubMode("INFO", "print the layout of a disc or a playlist of discs")
	md.AddSubMode("READ", "dump sectors as hexadecimal")
	md.AddSubMode("VERIFY", "compare the single and multi threaded readers")
	md.AddSubMode("RIP", "write an audio track to a WAV file")
	md.AddSubMode("PLAY", "play an audio track")
	md.AddSubMode("BENCH", "measure the effect of read hints")
	md.AddSubMode("MONITOR", "read a disc continuously and serve statistics")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return exitOK
	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return exitParse
	}

	if *showVersion {
		fmt.Fprintln(output, version.String())
		return exitOK
	}

	if *log {
		logger.SetEcho(logger.NewColorizer(os.Stderr), false)
	} else {
		logger.SetEcho(nil, false)
	}

	// preferences on the command line are applied when the preferences are
	// loaded from disk
	if *override != "" {
		prefs.PushCommandLineStack(*override)
		defer prefs.PopCommandLineStack()
	}

	env, err := newEnvironment(*prefsFile)
	if err != nil {
		fmt.Fprintf(output, "* error: %v\n", err)
		return exitPrefs
	}

	switch md.Mode() {
	case "INFO":
		err = commands.Info(md, env, output)
	case "READ":
		err = commands.Read(md, env, output)
	case "VERIFY":
		err = commands.Verify(ctx, md, env, output)
	case "RIP":
		err = commands.Rip(md, env, output)
	case "PLAY":
		err = play(ctx, md, env, output)
	case "BENCH":
		err = commands.Bench(md, env, output)
	case "MONITOR":
		err = commands.Monitor(ctx, md, env, os.Stdin, output)
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md, err)
		return exitFailed
	}

	return exitOK
}

func newEnvironment(prefsFile string) (*environment.Environment, error) {
	var p *preferences.Preferences
	var err error

	if prefsFile == "" {
		p, err = preferences.NewPreferences()
	} else {
		p, err = preferences.NewPreferencesAt(prefsFile)
	}
	if err != nil {
		return nil, err
	}

	return environment.NewEnvironment(environment.MainLabel, p)
}

// play is not in the commands package because the audio device can not be
// opened in every environment that the commands are tested in
func play(ctx context.Context, md *modalflag.Modes, env *environment.Environment, output io.Writer) error {
	md.NewMode()
	track := md.AddInt("track", 1, "the audio track to play")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	switch len(md.RemainingArgs()) {
	case 0:
		return curated.Errorf(commands.NoDisc, md)
	case 1:
	default:
		return curated.Errorf(commands.TooManyArgs, md)
	}

	if *track < 1 || *track > 99 {
		return curated.Errorf(commands.BadFlag, md, "track must be between 1 and 99")
	}

	cd, err := cdif.Open(env, nil, md.GetArg(0))
	if err != nil {
		return err
	}
	defer cd.Close()

	r, err := cdda.NewTrackReader(env, cd, uint8(*track), false)
	if err != nil {
		return err
	}

	pl, err := player.NewPlayer(env)
	if err != nil {
		return err
	}

	quit := make(chan struct{})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if easyterm.IsTerminal(os.Stdin) {
		var pt easyterm.Terminal
		if err := pt.Initialise(os.Stdin, os.Stdout); err == nil {
			defer pt.CleanUp()
			pt.CBreakMode()
			keys := pt.Keys(ctx.Done())
			go func() {
				for k := range keys {
					if easyterm.IsQuit(k) {
						cancel()
						return
					}
				}
			}()
		}
	}

	go func() {
		<-ctx.Done()
		close(quit)
	}()

	fmt.Fprintf(output, "playing track %d (%d sectors)\n", *track, r.Remaining())
	return pl.Play(r, quit)
}
