package main

import (
	"context"
	"fmt"
	"iter"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/fitdecode/fit"
	"github.com/samcharles93/fitdecode/internal/fitio"
)

func dumpCmd() *cli.Command {
	var (
		out        string
		format     string
		nameFilter string
		ignoreCRC  bool
	)

	return &cli.Command{
		Name:      "dump",
		Usage:     "Decode a FIT file and print its messages",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write output to this path instead of stdout",
				Destination: &out,
			},
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "output format: readable|json",
				Value:       "readable",
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "name",
				Aliases:     []string{"n"},
				Usage:       "only print messages with this name (e.g. record)",
				Destination: &nameFilter,
			},
			&cli.BoolFlag{
				Name:        "ignore-crc",
				Usage:       "decode even if the file or segment CRC is wrong",
				Destination: &ignoreCRC,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			file := cmd.Args().First()
			if file == "" {
				return fmt.Errorf("dump: missing FILE argument")
			}

			cfg := LoadConfig()
			applyDumpConfig(cmd, cfg, &format, &ignoreCRC)

			if format != "readable" && format != "json" {
				return fmt.Errorf("dump: unknown -t %q, want readable or json", format)
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("dump: %w", err)
				}
				defer f.Close()
				w = f
			}

			d, err := fit.Open(fitio.PathSource(file), fit.WithCRCVerification(!ignoreCRC))
			if err != nil {
				return fmt.Errorf("dump: opening %s: %w", file, err)
			}
			defer d.Close()

			var seq iter.Seq2[fit.Message, error]
			if nameFilter != "" {
				seq = d.MessagesNamed(nameFilter)
			} else {
				seq = d.Messages()
			}

			enc := json.NewEncoder(w)
			count := 0
			for msg, decodeErr := range seq {
				if decodeErr != nil {
					return fmt.Errorf("dump: decoding %s: %w", file, decodeErr)
				}
				switch format {
				case "json":
					if err := enc.Encode(toDumpDTO(msg)); err != nil {
						return fmt.Errorf("dump: encoding: %w", err)
					}
				default:
					printReadable(w, msg)
				}
				count++
			}

			if count == 0 {
				fmt.Fprintln(os.Stderr, "dump: no messages matched")
			}
			return nil
		},
	}
}

type dumpFieldDTO struct {
	Name  string `json:"name"`
	Units string `json:"units,omitempty"`
	Value any    `json:"value"`
}

type dumpDTO struct {
	Message string         `json:"message"`
	Number  uint16         `json:"number"`
	Fields  []dumpFieldDTO `json:"fields"`
}

func toDumpDTO(m fit.Message) dumpDTO {
	dto := dumpDTO{Message: m.Name, Number: m.GlobalMsgNum, Fields: make([]dumpFieldDTO, 0, len(m.Fields))}
	for _, f := range m.Fields {
		dto.Fields = append(dto.Fields, dumpFieldDTO{Name: f.Name, Units: f.Units, Value: f.Value.Interface()})
	}
	return dto
}

func printReadable(w *os.File, m fit.Message) {
	fmt.Fprintf(w, "%s (#%d)\n", m.Name, m.GlobalMsgNum)
	for _, f := range m.Fields {
		if f.Units != "" {
			fmt.Fprintf(w, "  %-24s %v %s\n", f.Name, f.Value.Interface(), f.Units)
		} else {
			fmt.Fprintf(w, "  %-24s %v\n", f.Name, f.Value.Interface())
		}
	}
}
