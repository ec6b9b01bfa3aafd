package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jengzang/mobility-metrics-go/internal/service"
	"github.com/spf13/cobra"
)

var (
	optInput   string
	optDataset string
	optLabel   string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a dataset file and print its summary",
	Long: `Reads a JSON upload {"params": {...}, "points": [...]} from --input
(or stdin when --input is "-") and runs the full pipeline on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readRequest(optInput)
		if err != nil {
			return err
		}
		if optDataset != "" {
			req.Params.DatasetName = optDataset
		}
		if optLabel != "" {
			req.Params.Label = optLabel
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		run, _, err := a.service.Process(cmd.Context(), req)
		if err != nil {
			return err
		}

		summary, err := a.service.Summary(cmd.Context(), run.Dataset)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s %s\n", run.ID, run.Status)
		printSummary(cmd.OutOrStdout(), summary)
		return nil
	},
}

func readRequest(path string) (service.SubmitRequest, error) {
	var req service.SubmitRequest

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return req, nil
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVarP(&optInput, "input", "i", "-", "upload file")
	processCmd.Flags().StringVar(&optDataset, "dataset", "", "override the dataset name")
	processCmd.Flags().StringVar(&optLabel, "label", "", "override the dataset label")
}
