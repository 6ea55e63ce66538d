// skeltool is a CLI utility for inspecting and transforming decoded
// motion-capture documents (joint hierarchy + motion matrix).
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/motionkit/mocap/internal/config"
	"github.com/motionkit/mocap/internal/logger"
	"github.com/motionkit/mocap/pkg/capture"
	"github.com/motionkit/mocap/pkg/skeleton"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "reroot":
		cmdReroot(args)
	case "relative", "rel":
		cmdRelative(args)
	case "query", "q":
		cmdQuery(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skeltool - motion-capture skeleton utility

Usage:
  skeltool <command> [options] <args>

Commands:
  info <capture>                      Show hierarchy and motion summary
  reroot [-o out] <capture> <joint>   Re-root the skeleton at a joint
  relative [-o out] <capture>         Make positions relative to the root
  query <capture> <joint> <frame>     Print a joint's position and rotation

Options (all commands):
  -config path     Config file (default: ./skeltool.yaml)
  -debug           Enable debug logging
  -log-file path   Write logs to a rotating file
  -format f        Output format when the path has no extension: yaml or json
  -precision n     Decimal places in query output

Examples:
  skeltool info walk.yaml
  skeltool reroot -o rerooted.yaml walk.yaml Spine
  skeltool relative walk.json
  skeltool query walk.yaml Neck 12.5`)
}

// setup parses command flags, loads config, and initializes logging.
// Returns the config and the remaining positional arguments.
func setup(name string, args []string, extra func(fs *flag.FlagSet)) (*config.Config, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	config.AddFlags(fs)
	if extra != nil {
		extra(fs)
	}
	_ = fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	return cfg, fs.Args()
}

// loadSkeleton reads a capture document and builds the skeleton model.
func loadSkeleton(path string) (*capture.Document, *skeleton.Skeleton) {
	doc, err := capture.DecodeFile(path)
	if err != nil {
		logger.Error("failed to read capture", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}
	s, err := doc.Skeleton()
	if err != nil {
		logger.Error("invalid capture", zap.String("path", path), zap.Error(err))
		os.Exit(1)
	}
	return doc, s
}

// writeSkeleton snapshots the model and writes it to out (or back over
// the input when out is empty). A path without an extension gets the
// configured output format appended.
func writeSkeleton(s *skeleton.Skeleton, inPath, outPath string, cfg *config.Config) {
	if outPath == "" {
		outPath = inPath
	}
	if filepath.Ext(outPath) == "" {
		outPath += "." + cfg.Output.Format
	}
	if err := capture.FromSkeleton(s).EncodeFile(outPath); err != nil {
		logger.Error("failed to write capture", zap.String("path", outPath), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("wrote capture", zap.String("path", outPath))
}

func cmdInfo(args []string) {
	_, rest := setup("info", args, nil)
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: skeltool info <capture>")
		os.Exit(1)
	}
	defer logger.Sync()

	_, s := loadSkeleton(rest[0])

	fmt.Printf("Capture:  %s\n", rest[0])
	fmt.Printf("Joints:   %d\n", s.JointCount())
	fmt.Printf("Frames:   %d\n", s.FrameCount())
	fmt.Printf("Channels: %d\n", len(s.Channels()))
	fmt.Printf("Root:     %s\n", s.Root())
	fmt.Println("Hierarchy:")
	printTree(s, s.Root(), 1)
}

// printTree prints the joint tree depth-first with indentation.
func printTree(s *skeleton.Skeleton, name string, depth int) {
	off, _ := s.Offset(name)
	fmt.Printf("%s%s  (%g, %g, %g)\n", strings.Repeat("  ", depth), name, off.X, off.Y, off.Z)
	kids, _ := s.Children(name)
	for _, child := range kids {
		printTree(s, child, depth+1)
	}
}

func cmdReroot(args []string) {
	var out string
	cfg, rest := setup("reroot", args, func(fs *flag.FlagSet) {
		fs.StringVar(&out, "o", "", "Output path (default: overwrite input)")
	})
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: skeltool reroot [-o out] <capture> <joint>")
		os.Exit(1)
	}
	defer logger.Sync()

	_, s := loadSkeleton(rest[0])
	oldRoot := s.Root()

	if err := s.SetNewRoot(rest[1]); err != nil {
		logger.Error("reroot failed", zap.String("joint", rest[1]), zap.Error(err))
		os.Exit(1)
	}
	logger.Info("rerooted skeleton",
		zap.String("old_root", oldRoot),
		zap.String("new_root", s.Root()),
		zap.Int("frames", s.FrameCount()))

	writeSkeleton(s, rest[0], out, cfg)
}

func cmdRelative(args []string) {
	var out string
	cfg, rest := setup("relative", args, func(fs *flag.FlagSet) {
		fs.StringVar(&out, "o", "", "Output path (default: overwrite input)")
	})
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: skeltool relative [-o out] <capture>")
		os.Exit(1)
	}
	defer logger.Sync()

	_, s := loadSkeleton(rest[0])
	s.ComputeRelativePositions()
	logger.Info("computed root-relative positions",
		zap.String("root", s.Root()),
		zap.Int("frames", s.FrameCount()))

	writeSkeleton(s, rest[0], out, cfg)
}

func cmdQuery(args []string) {
	cfg, rest := setup("query", args, nil)
	if len(rest) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: skeltool query <capture> <joint> <frame>")
		os.Exit(1)
	}
	defer logger.Sync()

	_, s := loadSkeleton(rest[0])
	joint := rest[1]

	frame, err := strconv.ParseFloat(rest[2], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid frame %q: %v\n", rest[2], err)
		os.Exit(1)
	}

	pos, perr := s.SamplePosition(joint, frame)
	rot, rerr := s.SampleRotation(joint, frame)
	if perr != nil || rerr != nil {
		if perr == nil {
			perr = rerr
		}
		logger.Error("query failed", zap.String("joint", joint), zap.Error(perr))
		os.Exit(1)
	}

	p := cfg.Output.Precision
	fmt.Printf("%s @ frame %s\n", joint, rest[2])
	fmt.Printf("  position: (%.*f, %.*f, %.*f)\n", p, pos.X, p, pos.Y, p, pos.Z)
	fmt.Printf("  rotation: (%.*f, %.*f, %.*f)\n", p, rot.X, p, rot.Y, p, rot.Z)
}
