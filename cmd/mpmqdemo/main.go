// Command mpmqdemo drives the controller end to end through the real
// re-exec path: it registers one function, fans it out across generated
// records with a broadcast multiplier, and prints each result's size.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/soda480/mpmq-go"
	"github.com/soda480/mpmq-go/reexec"
)

const (
	records    = 50
	multiplier = 100_000
	workers    = 10
)

func init() {
	reexec.Register("buildPayload", func(_ context.Context, record, shared mpmq.Record) (any, error) {
		slog.Debug("processor id", slog.Any("uuid", record["uuid"]))
		// JSON numbers decode as float64 on the worker side of the pipe.
		n, ok := shared["multiplier"].(float64)
		if !ok {
			return nil, fmt.Errorf("multiplier missing from shared data")
		}
		return strings.Repeat("X", int(n)), nil
	})
}

func processData() []mpmq.Record {
	data := make([]mpmq.Record, records)
	for i := range data {
		data[i] = mpmq.Record{"uuid": uuid.NewString()[:8]}
	}
	return data
}

func main() {
	reexec.Main()

	c, err := mpmq.New("buildPayload",
		mpmq.WithProcessData(processData()),
		mpmq.WithSharedData(mpmq.Record{"multiplier": multiplier}),
		mpmq.WithProcessesToStart(workers),
	)
	if err != nil {
		slog.Error("constructing controller", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Println("Processing...")
	results, err := c.Execute(context.Background(), true)
	if err != nil {
		slog.Error("execution failed", slog.Any("error", err))
		os.Exit(1)
	}
	for _, r := range results {
		s, _ := r.(string)
		fmt.Println(len(s))
	}
}
