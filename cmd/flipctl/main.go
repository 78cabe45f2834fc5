// Package main provides the flipbook control client.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"google.golang.org/protobuf/types/known/structpb"

	apiconnect "github.com/osa030/flipbook/internal/api/connect"
)

var (
	app    = kingpin.New("flipctl", "flipbook player control client")
	server = app.Flag("server", "Control API address").Default("http://localhost:8090").String()
	token  = app.Flag("token", "Control token").Envar("FLIPBOOK_CONTROL_TOKEN").String()

	statusCmd  = app.Command("status", "Show the player status")
	pressCmd   = app.Command("press", "Hold the remote input down")
	releaseCmd = app.Command("release", "Let the remote input go")

	holdCmd      = app.Command("hold", "Press, wait, then release")
	holdDuration = holdCmd.Arg("duration", "How long to hold, e.g. 2s").Required().Duration()

	subscribeCmd = app.Command("subscribe", "Subscribe to notifications")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewPlayerClient(http.DefaultClient, *server, *token)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Execute command
	var err error
	switch command {
	case statusCmd.FullCommand():
		err = printResult(client.GetStatus(ctx))
	case pressCmd.FullCommand():
		err = printResult(client.Press(ctx))
	case releaseCmd.FullCommand():
		err = printResult(client.Release(ctx))
	case holdCmd.FullCommand():
		err = hold(ctx, client, *holdDuration)
	case subscribeCmd.FullCommand():
		err = subscribe(ctx, client)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func hold(ctx context.Context, client *apiconnect.PlayerClient, d time.Duration) error {
	if err := printResult(client.Press(ctx)); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-time.After(d):
	}

	// Always release, even when interrupted
	releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return printResult(client.Release(releaseCtx))
}

func subscribe(ctx context.Context, client *apiconnect.PlayerClient) error {
	stream, err := client.SubscribeNotifications(ctx)
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	// Receive notifications
	for stream.Receive() {
		printNotification(stream.Msg())
	}

	if ctx.Err() != nil {
		fmt.Println("\nUnsubscribing...")
		return nil
	}
	return stream.Err()
}

func printResult(st *structpb.Struct, err error) error {
	if err != nil {
		return err
	}
	printStatus(st)
	return nil
}

func printStatus(st *structpb.Struct) {
	f := st.GetFields()
	progress := f["progress"].GetStructValue().GetFields()

	fmt.Printf("State:      %s\n", f["state"].GetStringValue())
	fmt.Printf("Pack:       %s\n", f["pack"].GetStringValue())
	fmt.Printf("Next pack:  %s\n", f["next_pack"].GetStringValue())
	fmt.Printf("Cursor:     %.2f\n", f["cursor"].GetNumberValue())
	fmt.Printf("Pressed:    %t\n", f["pressed"].GetBoolValue())
	fmt.Printf("Audio:      %s\n", unlocked(f["audio_unlocked"].GetBoolValue()))
	fmt.Printf("Loaded:     %.0f/%.0f (%.0f%%)\n",
		progress["loaded"].GetNumberValue(),
		progress["expected"].GetNumberValue(),
		progress["percent"].GetNumberValue())
	fmt.Printf("Listeners:  %.0f\n", f["subscribers"].GetNumberValue())
}

func unlocked(b bool) string {
	if b {
		return "unlocked"
	}
	return "locked"
}

func printNotification(n *structpb.Struct) {
	f := n.GetFields()

	// Print sequence number
	fmt.Printf("[Sequence: %.0f] ", f["sequence_no"].GetNumberValue())

	// Print event type header
	switch f["type"].GetStringValue() {
	case "initial_state":
		fmt.Print("INITIAL STATE  ")
	case "state_changed":
		fmt.Print("STATE CHANGED  ")
	case "pack_switched":
		fmt.Print("PACK SWITCHED  ")
	case "pinned_at_end":
		fmt.Print("PINNED AT END  ")
	default:
		fmt.Printf("UNKNOWN (%s)  ", f["type"].GetStringValue())
	}

	fmt.Printf("state=%s pack=%s next=%s cursor=%.2f\n",
		f["state"].GetStringValue(),
		f["pack"].GetStringValue(),
		f["next_pack"].GetStringValue(),
		f["cursor"].GetNumberValue())
}
