/* main.go
 * The "main" method for running the live scoring server. For details see `readme.md`
 * Usage: go run main.go -addr=":8080" -seedEvent="Solo" -criteria="Expression Technique"
 */

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"livescore/api/api"
	"livescore/api/notify"
	"livescore/web"

	"github.com/go-andiamo/splitter"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}

	// Flags
	addrPtr := flag.String("addr", envOr("ADDR", ":8080"), "listen address for the HTTP server")
	dbPtr := flag.String("db", envOr("DB_NAME", "livescore"), "Mongo database name")
	seedEventPtr := flag.String("seedEvent", "", "optional: name of an event to create at startup if it does not exist")
	criteriaPtr := flag.String("criteria", "Expression Technique", "criterion names for -seedEvent, space separated; quote names containing spaces")
	flag.Parse()

	broker := notify.NewBroker(0)
	defer broker.Close()

	a, err := api.NewAPI(*dbPtr, os.Getenv("MONGO_URI"), broker)
	if err != nil {
		log.Fatalf("failed to initialize API: %v", err)
	}
	defer func() {
		if err := a.Store.GetClient().Disconnect(context.TODO()); err != nil {
			log.Println("failed to disconnect from Mongo:", err)
		}
	}()

	if *seedEventPtr != "" {
		if err := seedEvent(a, *seedEventPtr, *criteriaPtr); err != nil {
			log.Fatalf("failed to seed event: %v", err)
		}
	}

	log.Fatal(web.Start(web.Config{
		Addr:     *addrPtr,
		API:      a,
		Notifier: broker,
	}))
}

// seedEvent creates the named event unless one with that name already exists. The
// criteria flag is split on spaces with quote support so criterion names like
// "Stage Presence" stay one name.
func seedEvent(a *api.API, name string, criteria string) error {
	events, err := a.Events()
	if err != nil {
		return err
	}
	for _, e := range events {
		if e.Name == name {
			log.Printf("event %q already exists, skipping seed", name)
			return nil
		}
	}

	spaceSplitter, _ := splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)
	names, err := spaceSplitter.Split(criteria)
	if err != nil {
		return err
	}
	for i := range names {
		names[i] = strings.ReplaceAll(names[i], "\"", "")
		names[i] = strings.ReplaceAll(names[i], "“", "")
		names[i] = strings.ReplaceAll(names[i], "”", "")
	}

	event, err := a.CreateEvent(name, names)
	if err != nil {
		return err
	}
	log.Printf("seeded event %q with criteria %v", event.Name, names)
	return nil
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
