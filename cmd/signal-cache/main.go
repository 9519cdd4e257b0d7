package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/cognicore/vidgap/pkg/vidgap/cache"
)

func main() {
	var (
		dbPath       = flag.String("db", "vidgap-cache.db", "Signal cache database path")
		stats        = flag.Bool("stats", false, "Print cache statistics")
		clearExpired = flag.Bool("clear-expired", false, "Remove expired entries")
		clearNS      = flag.String("clear-ns", "", "Clear one namespace (search, video, channel, trends, autocomplete)")
		clearAll     = flag.Bool("clear-all", false, "Wipe the whole cache")
	)
	flag.Parse()

	ctx := context.Background()
	store, err := cache.Open(ctx, *dbPath)
	if err != nil {
		log.Fatalf("open signal cache: %v", err)
	}
	defer store.Close()

	switch {
	case *clearAll:
		if err := store.ClearAll(ctx); err != nil {
			log.Fatal(err)
		}
		fmt.Println("cache cleared")
	case *clearNS != "":
		if err := store.ClearNamespace(ctx, *clearNS); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("namespace %q cleared\n", *clearNS)
	case *clearExpired:
		n, err := store.ClearExpired(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d expired entries removed\n", n)
	case *stats:
		fallthrough
	default:
		s, err := store.GetStats(ctx)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("entries: %d (%d expired)\n", s.Total, s.Expired)
		namespaces := make([]string, 0, len(s.ByNamespace))
		for ns := range s.ByNamespace {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
		for _, ns := range namespaces {
			fmt.Printf("  %-14s %d\n", ns, s.ByNamespace[ns])
		}
	}
}
