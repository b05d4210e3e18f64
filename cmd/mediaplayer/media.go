package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/metadata"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// createAddCommand создает команду add
func (app *Application) createAddCommand(ctx context.Context) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "add [file path or URL]",
		Short: "Add a local file or URL to the current playlist",
		Long:  `Add a local media file or a remote URL to the current playlist. Title and artist are read from tags or the file name.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.addMedia(ctx, args[0], title)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "title to use instead of tags")
	return cmd
}

func (app *Application) addMedia(ctx context.Context, locator, title string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	desc, err := metadata.NewExtractor().Describe(locator)
	if err != nil {
		return err
	}
	if title == "" {
		title = desc.Info.Title
	}

	item, err := manager.AddMedia(desc.URI, title, desc.Type, desc.Info.Options()...)
	if err != nil {
		return err
	}

	current, _ := manager.CurrentPlaylist()
	fmt.Printf("✅ Добавлено в плейлист %q:\n", current.Name)
	printItem(item)
	return nil
}

// createRemoveCommand создает команду remove
func (app *Application) createRemoveCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "remove [item id]",
		Short: "Remove a media item from the current playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			manager, err := app.Manager(ctx)
			if err != nil {
				return err
			}
			if err := manager.RemoveMedia(args[0]); err != nil {
				return err
			}
			fmt.Printf("🗑️  Файл удален из плейлиста: %s\n", args[0])
			return nil
		},
	}
}

// createListCommand создает команду list
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List media items of the current playlist",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listMedia(ctx)
		},
	}
}

func (app *Application) listMedia(ctx context.Context) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	current, ok := manager.CurrentPlaylist()
	if !ok {
		fmt.Println("📚 Плейлист не выбран. Создайте плейлист командой 'playlist create'.")
		return nil
	}
	if len(current.Items) == 0 {
		fmt.Printf("📚 Плейлист %q пуст. Добавьте файлы командой 'add'.\n", current.Name)
		return nil
	}

	fmt.Printf("📚 Плейлист %q, файлов: %d\n\n", current.Name, len(current.Items))
	printItemsHeader()
	for _, item := range current.Items {
		printItemRow(item)
	}

	fmt.Println()
	fmt.Println("💡 Используйте 'mediaplayer play [ID]' для воспроизведения")
	return nil
}

// createFindCommand создает команду find
func (app *Application) createFindCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "find [query]",
		Short: "Fuzzy search media items across all playlists",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			manager, err := app.Manager(ctx)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			matches := manager.Find(query)
			if len(matches) == 0 {
				fmt.Printf("🔍 Ничего не найдено по запросу %q\n", query)
				return nil
			}

			fmt.Printf("🔍 Найдено: %d\n\n", len(matches))
			fmt.Printf("%-20s ", "Плейлист")
			printItemsHeader()
			for _, match := range matches {
				fmt.Printf("%-20s ", utils.TruncateString(match.PlaylistName, 20))
				printItemRow(match.Item)
			}
			return nil
		},
	}
}

func printItemsHeader() {
	fmt.Printf("%-36s %-20s %-40s %-6s\n", "ID", "Исполнитель", "Название", "Тип")
	fmt.Println(strings.Repeat("-", 105))
}

func printItemRow(item media.Item) {
	fmt.Printf("%-36s %-20s %-40s %-6s\n",
		item.ID,
		utils.TruncateString(item.Artist, 20),
		utils.TruncateString(item.Title, 40),
		item.Type)
}

func printItem(item media.Item) {
	fmt.Printf("   ID: %s\n", item.ID)
	if item.Artist != "" {
		fmt.Printf("   Исполнитель: %s\n", item.Artist)
	}
	fmt.Printf("   Название: %s\n", item.Title)
	fmt.Printf("   Тип: %s\n", item.Type)
	fmt.Printf("   Источник: %s\n", item.URI)
}
