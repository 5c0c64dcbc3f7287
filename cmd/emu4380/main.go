package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kahnshaak/emu4380/pkg/bench"
	"github.com/kahnshaak/emu4380/pkg/cache"
	"github.com/kahnshaak/emu4380/pkg/inst"
	"github.com/kahnshaak/emu4380/pkg/machine"
)

// exitError carries a process exit code through RunE.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

const defaultMemSize = 131072

func main() {
	var memSize uint32
	var cacheType uint32

	rootCmd := &cobra.Command{
		Use:           "emu4380 <bytecode_file>",
		Short:         "emu4380 — a 32-bit register VM with configurable cache simulation",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], memSize, cacheType)
		},
	}
	rootCmd.PersistentFlags().Uint32VarP(&memSize, "memory", "m", defaultMemSize, "memory size in bytes")
	rootCmd.Flags().Uint32VarP(&cacheType, "cache", "c", 0, "cache type: 0 none, 1 direct mapped, 2 fully associative, 3 two-way set associative")

	// bench command
	var benchJSON string
	var benchInput string

	benchCmd := &cobra.Command{
		Use:   "bench <bytecode_file>",
		Short: "Run the image under every cache configuration and compare cycle counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input file: %w", err)
			}
			var input []byte
			if benchInput != "" {
				input, err = os.ReadFile(benchInput)
				if err != nil {
					return fmt.Errorf("failed to open input file: %w", err)
				}
			}

			reports := bench.Run(bench.Config{
				Image:   image,
				MemSize: memSize,
				Input:   input,
			})
			bench.WriteTable(os.Stdout, reports)

			if benchJSON != "" {
				f, err := os.Create(benchJSON)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := bench.WriteJSON(f, reports); err != nil {
					return err
				}
				fmt.Printf("Written to %s\n", benchJSON)
			}
			return nil
		},
	}
	benchCmd.Flags().StringVar(&benchJSON, "json", "", "also write reports to a JSON file")
	benchCmd.Flags().StringVar(&benchInput, "input", "", "file fed to trap input")

	// dis command
	disCmd := &cobra.Command{
		Use:   "dis <bytecode_file>",
		Short: "Disassemble an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return disassemble(args[0])
		},
	}

	// debug command
	debugCmd := &cobra.Command{
		Use:   "debug <bytecode_file>",
		Short: "Single-step an image in an interactive TUI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newMachine(args[0], memSize, cacheType)
			if err != nil {
				return err
			}
			return m.Debug()
		},
	}
	debugCmd.Flags().Uint32VarP(&cacheType, "cache", "c", 0, "cache type: 0 none, 1 direct mapped, 2 fully associative, 3 two-way set associative")

	rootCmd.AddCommand(benchCmd, disCmd, debugCmd)

	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.msg != "" {
				fmt.Fprintln(os.Stderr, ee.msg)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newMachine builds a machine from the CLI arguments, enforcing the
// configuration exit codes.
func newMachine(path string, memSize, cacheType uint32) (*machine.Machine, error) {
	if cacheType > 3 {
		return nil, &exitError{code: 2, msg: "Invalid cache configuration. Aborting."}
	}

	image, err := os.ReadFile(path)
	if err != nil {
		return nil, &exitError{code: 1, msg: "Failed to open input file"}
	}

	m := machine.New(memSize)
	if err := m.LoadImage(image); err != nil {
		if errors.Is(err, machine.ErrInsufficientMemory) {
			fmt.Println("INSUFFICIENT MEMORY SPACE")
			return nil, &exitError{code: 2}
		}
		return nil, &exitError{code: 1, msg: err.Error()}
	}
	if err := m.SetCache(cache.Kind(cacheType)); err != nil {
		return nil, &exitError{code: 2, msg: "Invalid cache configuration. Aborting."}
	}
	return m, nil
}

// run executes the image until HALT, mapping phase failures to the
// invalid-instruction diagnostic and exit code 1.
func run(path string, memSize, cacheType uint32) error {
	m, err := newMachine(path, memSize, cacheType)
	if err != nil {
		return err
	}

	if err := m.Run(); err != nil {
		var inv *machine.InvalidInstructionError
		if errors.As(err, &inv) {
			fmt.Print(inv.Error())
			return &exitError{code: 1}
		}
		return &exitError{code: 1, msg: err.Error()}
	}
	return nil
}

// disassemble renders the image's entry word and its 8-byte instruction
// records.
func disassemble(path string) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	if len(image) < 4 {
		return fmt.Errorf("image too small: %d bytes", len(image))
	}

	entry := uint32(image[3])<<24 | uint32(image[2])<<16 | uint32(image[1])<<8 | uint32(image[0])
	fmt.Printf("entry: %d\n", entry)

	for off := 4; off+inst.Size <= len(image); off += inst.Size {
		i := inst.Decode(image[off:])
		fmt.Printf("%8d:  % x  %s\n", off, image[off:off+inst.Size], inst.Disassemble(i))
	}
	return nil
}
