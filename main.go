package main

import (
	"os"

	"github.com/arbobendik/FlexLight-sub000/cmd"
	"github.com/arbobendik/FlexLight-sub000/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	configFlag := cli.StringFlag{
		Name:  "config, c",
		Usage: "load settings from this YAML file",
	}

	app := cli.NewApp()
	app.Name = "flexgraph"
	app.Usage = "build, optimize and flatten scene graphs into GPU-friendly buffers"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile YAML scene descriptions into a binary compressed format",
			Description: `
Build the scene graph described by each YAML file, optionally wrap it in a BVH
and flatten it into the geometry, scene and index buffers consumed by the
shaders.

The buffers, together with the packed transforms and lights, are written to a
zip archive next to each description unless --out is given.`,
			ArgsUsage: "scene1.yaml scene2.yaml ...",
			Flags: []cli.Flag{
				configFlag,
				cli.StringFlag{
					Name:  "out, o",
					Usage: "archive filename (single description only)",
				},
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "recompile descriptions whenever they change",
				},
			},
			Action: cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print compiled scene statistics",
			ArgsUsage: "scene.zip",
			Flags:     []cli.Flag{configFlag},
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:      "config",
			Usage:     "write the effective configuration to a file",
			ArgsUsage: "flexgraph.yaml",
			Flags:     []cli.Flag{configFlag},
			Action:    cmd.WriteConfig,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("flexgraph").Error(err)
		os.Exit(1)
	}
}
