package elevutils

import (
	_ "embed"
	"flag"
	"fmt"
	"os"
)

//go:generate sh -c "printf %s $(git rev-parse HEAD) > githash.txt"
//go:embed githash.txt
var gitHash string

func GetGitHash() string {
	return gitHash
}

func ProcessCmdArgs() (string, string) {
	help := flag.Bool("help", false, "Show Help Window")
	version := flag.Bool("version", false, "Show Version")
	identifier := flag.String("id", "", "Set the identifier of this session. Defaults to random string")
	configPath := flag.String("config", "", "Path to a YAML configuration file. Defaults to built-in configuration")

	flag.Parse()

	if *version {
		fmt.Println("Version:", GetGitHash())
		os.Exit(0)
	}

	if *help {
		fmt.Println("Usage: ./elevator [OPTIONS]")
		fmt.Println("Elevator Dispatch System")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	return *identifier, *configPath
}

func Abs(value int) int {
	if value < 0 {
		return -value
	}
	return value
}
