package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-mediaplayer/internal/m3u"
	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/playlist"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// createPlaylistCommand создает команду playlist с подкомандами управления плейлистами
func (app *Application) createPlaylistCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage playlists",
		Long:  `Create, list, select, rename, delete, import and export playlists.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create a new playlist and select it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.createPlaylist(ctx, strings.Join(args, " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all playlists",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listPlaylists(ctx)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "select [id or name]",
		Short: "Select the current playlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.selectPlaylist(ctx, strings.Join(args, " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id or name]",
		Short: "Delete a playlist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.deletePlaylist(ctx, strings.Join(args, " "))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [id or name] [new name]",
		Short: "Rename a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.renamePlaylist(ctx, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export [id or name] [file.m3u]",
		Short: "Export a playlist to an M3U file",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.exportPlaylist(ctx, args[0], args[1])
		},
	})

	var importName string
	importCmd := &cobra.Command{
		Use:   "import [file.m3u]",
		Short: "Import an M3U file as a new playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.importPlaylist(ctx, args[0], importName)
		},
	}
	importCmd.Flags().StringVarP(&importName, "name", "n", "", "playlist name (defaults to the file name)")
	cmd.AddCommand(importCmd)

	return cmd
}

func (app *Application) createPlaylist(ctx context.Context, name string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	p, err := manager.CreatePlaylist(name)
	if err != nil {
		return err
	}
	// Следующие команды add и import работают с только что созданным плейлистом
	if err := manager.SelectPlaylist(p.ID); err != nil {
		return err
	}

	fmt.Printf("✅ Плейлист создан: %s (ID: %s)\n", p.Name, p.ID)
	return nil
}

func (app *Application) listPlaylists(ctx context.Context) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	playlists := manager.Playlists()
	if len(playlists) == 0 {
		fmt.Println("📚 Плейлистов нет. Создайте плейлист командой 'playlist create'.")
		return nil
	}

	current, _ := manager.CurrentPlaylist()
	fmt.Printf("📚 Найдено плейлистов: %d\n\n", len(playlists))
	fmt.Printf("  %-36s %-40s %s\n", "ID", "Название", "Файлов")
	fmt.Println(strings.Repeat("-", 90))
	for _, p := range playlists {
		marker := " "
		if p.ID == current.ID {
			marker = "*"
		}
		fmt.Printf("%s %-36s %-40s %d\n", marker, p.ID, utils.TruncateString(p.Name, 38), len(p.Items))
	}
	return nil
}

func (app *Application) selectPlaylist(ctx context.Context, ref string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	p, err := findPlaylist(manager.Playlists(), ref)
	if err != nil {
		return err
	}
	if err := manager.SelectPlaylist(p.ID); err != nil {
		return err
	}

	fmt.Printf("✅ Текущий плейлист: %s\n", p.Name)
	return nil
}

func (app *Application) deletePlaylist(ctx context.Context, ref string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	p, err := findPlaylist(manager.Playlists(), ref)
	if err != nil {
		return err
	}
	if err := manager.DeletePlaylist(p.ID); err != nil {
		return err
	}

	fmt.Printf("🗑️  Плейлист удален: %s\n", p.Name)
	return nil
}

func (app *Application) renamePlaylist(ctx context.Context, ref, name string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	p, err := findPlaylist(manager.Playlists(), ref)
	if err != nil {
		return err
	}
	if err := manager.RenamePlaylist(p.ID, name); err != nil {
		return err
	}

	fmt.Printf("✅ Плейлист переименован: %s → %s\n", p.Name, strings.TrimSpace(name))
	return nil
}

func (app *Application) exportPlaylist(ctx context.Context, ref, path string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	p, err := findPlaylist(manager.Playlists(), ref)
	if err != nil {
		return err
	}

	path, err = utils.ExpandHome(path)
	if err != nil {
		return err
	}
	if err := m3u.ExportFile(path, p); err != nil {
		return err
	}

	fmt.Printf("📤 Экспортировано файлов: %d → %s\n", len(p.Items), path)
	return nil
}

func (app *Application) importPlaylist(ctx context.Context, path, name string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	path, err = utils.ExpandHome(path)
	if err != nil {
		return err
	}
	result, err := m3u.ImportFile(path)
	if err != nil {
		return err
	}
	if name == "" {
		name = result.Name
	}

	p, err := manager.ImportPlaylist(name, result.Items)
	if err != nil {
		return err
	}

	fmt.Printf("📥 Плейлист импортирован: %s, файлов: %d\n", p.Name, len(p.Items))
	if result.Skipped > 0 {
		fmt.Printf("⚠️  Пропущено записей неизвестного типа: %d\n", result.Skipped)
	}
	return nil
}

// findPlaylist ищет плейлист по ID, а затем по имени без учета регистра
func findPlaylist(playlists []media.Playlist, ref string) (media.Playlist, error) {
	ref = strings.TrimSpace(ref)
	for _, p := range playlists {
		if p.ID == ref {
			return p, nil
		}
	}

	var found []media.Playlist
	for _, p := range playlists {
		if strings.EqualFold(p.Name, ref) {
			found = append(found, p)
		}
	}
	switch len(found) {
	case 0:
		return media.Playlist{}, fmt.Errorf("%w: %s", playlist.ErrPlaylistNotFound, ref)
	case 1:
		return found[0], nil
	default:
		return media.Playlist{}, fmt.Errorf("несколько плейлистов с именем %q, укажите ID", ref)
	}
}
