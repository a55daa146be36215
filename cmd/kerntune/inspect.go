package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/kerntune/internal/results"
)

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Print the contents of a tuning results file",
		Flags: commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fileCfg := LoadConfig()
			applyCommonConfig(cmd, fileCfg)

			f, err := results.Read(resultsPath)
			if err != nil {
				return err
			}

			fmt.Printf("results file: %s\n", resultsPath)
			fmt.Printf("schema:       %d\n", f.SchemaVersion)
			fmt.Printf("session:      %s\n", f.SessionID)

			fmt.Println("validator:")
			for _, key := range sortedKeys(f.Validator) {
				fmt.Printf("  %-18s %s\n", key+":", f.Validator[key])
			}

			total := 0
			for _, opSig := range sortedOpSigs(f) {
				fmt.Printf("op %s:\n", opSig)
				byParams := f.Results[opSig]
				paramsSigs := make([]string, 0, len(byParams))
				for paramsSig := range byParams {
					paramsSigs = append(paramsSigs, paramsSig)
				}
				sort.Strings(paramsSigs)
				for _, paramsSig := range paramsSigs {
					fmt.Printf("  %-28s -> %s\n", paramsSig, byParams[paramsSig].String())
					total++
				}
			}
			fmt.Printf("%d entries\n", total)
			return nil
		},
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedOpSigs(f *results.File) []string {
	sigs := make([]string, 0, len(f.Results))
	for sig := range f.Results {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	return sigs
}
