package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"mdblog/internal/domain/config"
	"mdblog/internal/render"
)

const sampleArticle = `# Hello World
> %s
[tags] mdblog
This is your first article. Edit or delete it, then run ` + "`mdblog build`" + `.
`

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(root *CLI) error {
	fmt.Printf("Writing configuration to %s\n", root.Config)
	if err := RunInit(root.Config, i.Force); err != nil {
		return err
	}
	fmt.Println("initialized successfully")
	return nil
}

// RunInit writes the default configuration to configPath and seeds the
// directories it names next to it. Existing files are kept unless force is set.
func RunInit(configPath string, force bool) error {
	cfg := config.Default()
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := writeNew(configPath, data, force); err != nil {
		return err
	}

	base := filepath.Dir(configPath)
	tpl, err := render.LoadTemplates("")
	if err != nil {
		return err
	}
	files := map[string]string{
		filepath.Join(base, cfg.Build.TemplatesDir, render.ArticleTemplateFile): tpl.Article,
		filepath.Join(base, cfg.Build.TemplatesDir, render.ListingTemplateFile): tpl.Listing,
		filepath.Join(base, cfg.Build.SourceDir, "hello-world.md"):             fmt.Sprintf(sampleArticle, cfg.Build.Now.Format("2006-01-02")),
	}
	for path, body := range files {
		if err := writeNew(path, []byte(body), force); err != nil {
			return err
		}
	}
	return os.MkdirAll(filepath.Join(base, cfg.Build.StaticDir), 0o755)
}

// writeNew refuses to replace an existing file unless force is set.
func writeNew(path string, data []byte, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
