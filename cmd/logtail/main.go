// logtail lists recent audit records from the logging service. Quick way to
// check what the notification service has been emitting without curl.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/GoNotify/notigate/internal/logclient"
)

func main() {
	var (
		baseURL = flag.String("url", "http://127.0.0.1:8020", "logging service base URL")
		service = flag.String("service", "", "filter by service name")
		method  = flag.String("method", "", "filter by HTTP method")
		status  = flag.Int("status", 0, "filter by status code")
		limit   = flag.Int("limit", 20, "maximum records to fetch")
		skip    = flag.Int("skip", 0, "records to skip")
		since   = flag.String("since", "", "only records after this RFC3339 time")
		asJSON  = flag.Bool("json", false, "print raw JSON instead of a table")
		count   = flag.Bool("count", false, "print only the matching record count")
	)
	flag.Parse()

	filter := logclient.Filter{
		Skip:        *skip,
		Limit:       *limit,
		ServiceName: *service,
		Method:      *method,
		StatusCode:  *status,
	}
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logtail: bad -since value: %v\n", err)
			os.Exit(2)
		}
		filter.StartDate = t
	}

	client := logclient.New(*baseURL, 10*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if *count {
		total, err := client.Count(ctx, filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logtail: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(total)
		return
	}

	records, err := client.List(ctx, filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logtail: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			fmt.Fprintf(os.Stderr, "logtail: %v\n", err)
			os.Exit(1)
		}
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSERVICE\tMETHOD\tSTATUS\tMS\tPATH")
	for _, rec := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			rec.ID,
			rec.Timestamp.Format(time.RFC3339),
			rec.ServiceName,
			rec.Method,
			rec.StatusCode,
			rec.ProcessingTime,
			rec.Path,
		)
	}
	w.Flush()
}
