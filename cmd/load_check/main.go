package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"weatherforecast/datasource"
)

// result of a single fetch
type result struct {
	latency time.Duration
	kind    string
}

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:80", "Forecast service base URL")
		total   = flag.Int("n", 50, "Number of requests to make")
		workers = flag.Int("c", 5, "Number of concurrent workers")
		rps     = flag.Float64("rps", 10, "Maximum requests per second")
		burst   = flag.Int("burst", 5, "Maximum burst size")
		timeout = flag.Duration("timeout", 3*time.Second, "Per-request timeout")
	)
	flag.Parse()

	if *total <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "error: -n and -c must be positive")
		os.Exit(2)
	}

	src, err := datasource.NewServiceSource(*baseURL, *timeout, datasource.WithRetries(0))
	if err != nil {
		log.Fatalf("Invalid service URL: %v", err)
	}
	limited := datasource.NewRateLimitedForecastSource(src, *rps, *burst)

	fmt.Printf("Load check against %s\n", src.BaseURL())
	fmt.Printf("%d requests, %d workers, %.2f req/s (burst %d)\n\n", *total, *workers, *rps, *burst)

	jobs := make(chan int)
	results := make(chan result, *total)

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- fetchOnce(limited, *timeout)
			}
		}()
	}

	start := time.Now()
	for i := 0; i < *total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)
	elapsed := time.Since(start)

	counts := map[string]int{}
	var latencies []time.Duration
	for r := range results {
		counts[r.kind]++
		if r.kind == "ok" {
			latencies = append(latencies, r.latency)
		}
	}

	printSummary(counts, latencies, elapsed)

	if counts["ok"] != *total {
		os.Exit(1)
	}
}

func fetchOnce(src datasource.ForecastSource, timeout time.Duration) result {
	// Leave room for the limiter wait; the HTTP client enforces the request timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout+time.Minute)
	defer cancel()

	start := time.Now()
	_, err := src.FetchForecast(ctx, 0)
	if err == nil {
		return result{latency: time.Since(start), kind: "ok"}
	}
	if kind, ok := datasource.KindOf(err); ok {
		return result{latency: time.Since(start), kind: kind.String()}
	}
	return result{latency: time.Since(start), kind: "other"}
}

func printSummary(counts map[string]int, latencies []time.Duration, elapsed time.Duration) {
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	fmt.Println("Results:")
	for _, k := range kinds {
		fmt.Printf("  %-20s %d\n", k, counts[k])
	}

	if len(latencies) > 0 {
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		var sum time.Duration
		for _, l := range latencies {
			sum += l
		}
		fmt.Printf("\nLatency: min %s, p50 %s, max %s, avg %s\n",
			latencies[0].Round(time.Microsecond),
			latencies[len(latencies)/2].Round(time.Microsecond),
			latencies[len(latencies)-1].Round(time.Microsecond),
			(sum / time.Duration(len(latencies))).Round(time.Microsecond))
	}
	fmt.Printf("Total time: %s\n", elapsed.Round(time.Millisecond))
}
