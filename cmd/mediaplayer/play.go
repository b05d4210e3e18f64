package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-mediaplayer/internal/media"
	"github.com/hazadus/go-mediaplayer/internal/player"
	"github.com/hazadus/go-mediaplayer/internal/playlist"
	"github.com/hazadus/go-mediaplayer/internal/streaming"
	"github.com/hazadus/go-mediaplayer/internal/utils"
)

// idleGrace - сколько ждать следующего файла после окончания текущего
const idleGrace = 1500 * time.Millisecond

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play [item id]",
		Short: "Play the current playlist or a media item by its ID",
		Long:  `Play a media item by its ID, or the current playlist from the beginning. Keys: space pause, n next, p previous, s shuffle, q quit.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var itemID string
			if len(args) > 0 {
				itemID = args[0]
			}
			return app.play(ctx, itemID)
		},
	}
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Без терминала управление с клавиатуры просто не работает
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// readKeys читает одиночные символы без ожидания Enter до ошибки чтения
func readKeys(keys chan<- byte) {
	defer close(keys)
	buffer := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buffer); err != nil {
			return
		}
		keys <- buffer[0]
	}
}

func (app *Application) play(ctx context.Context, itemID string) error {
	manager, err := app.Manager(ctx)
	if err != nil {
		return err
	}

	item, err := pickItem(manager, itemID)
	if err != nil {
		return err
	}
	if err := manager.PlayMedia(ctx, item); err != nil {
		return err
	}

	fmt.Printf("🎮 Управление:\n")
	fmt.Printf("   [Пробел] - пауза/воспроизведение\n")
	fmt.Printf("   [n] / [p] - следующий / предыдущий\n")
	fmt.Printf("   [s] - перемешивание\n")
	fmt.Printf("   [q] или [Ctrl+C] - остановить и выйти\n")
	fmt.Println()

	// Включаем raw режим для чтения одиночных клавиш
	enableRawMode()
	defer disableRawMode()

	keys := make(chan byte)
	go readKeys(keys)

	return runPlayback(ctx, manager, keys)
}

// pickItem находит файл по ID и делает его плейлист текущим.
// Без ID берется первый файл текущего плейлиста
func pickItem(manager *playlist.Manager, itemID string) (media.Item, error) {
	if itemID == "" {
		current, ok := manager.CurrentPlaylist()
		if !ok {
			return media.Item{}, playlist.ErrNoPlaylistSelected
		}
		if len(current.Items) == 0 {
			return media.Item{}, fmt.Errorf("плейлист %q пуст", current.Name)
		}
		return current.Items[0], nil
	}

	if current, ok := manager.CurrentPlaylist(); ok {
		if item, found := current.ItemByID(itemID); found {
			return item, nil
		}
	}
	for _, p := range manager.Playlists() {
		if item, found := p.ItemByID(itemID); found {
			// Следующий и предыдущий файл берутся из плейлиста этого файла
			if err := manager.SelectPlaylist(p.ID); err != nil {
				return media.Item{}, err
			}
			return item, nil
		}
	}
	return media.Item{}, fmt.Errorf("%w: %s", playlist.ErrMediaNotFound, itemID)
}

// errPlaybackFailed - движок перешел в простой, так и не начав воспроизведение
var errPlaybackFailed = errors.New("не удалось воспроизвести файл")

// runPlayback обрабатывает клавиши и выводит прогресс, пока воспроизведение
// не закончится или пользователь не выйдет. Вызывается после PlayMedia
func runPlayback(ctx context.Context, manager *playlist.Manager, keys <-chan byte) error {
	items, cancelItems := manager.ObserveCurrentItem()
	defer cancelItems()
	states, cancelStates := manager.ObserveState()
	defer cancelStates()
	progress, cancelProgress := manager.ObserveProgress()
	defer cancelProgress()

	idle := time.NewTimer(idleGrace)
	idle.Stop()
	defer idle.Stop()

	// playedID - элемент, для которого движок сообщил о воспроизведении.
	// Простой на другом элементе означает, что движок не смог его открыть
	var playedID, printedID string

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\n⏹️  Воспроизведение остановлено пользователем")
			return manager.Stop()

		case key, ok := <-keys:
			if !ok {
				// Ввод закрыт, продолжаем без управления
				keys = nil
				continue
			}
			quit, err := handleKey(ctx, manager, key)
			if err != nil {
				fmt.Printf("\n❌ Ошибка: %v\n", err)
			}
			if quit {
				fmt.Println("\n⏹️  Воспроизведение остановлено")
				return manager.Stop()
			}

		case item, ok := <-items:
			if !ok {
				return nil
			}
			if item.ID != "" && item.ID != printedID {
				printedID = item.ID
				printNowPlaying(item)
			}

		case state, ok := <-states:
			if !ok {
				return nil
			}
			switch state {
			case player.StatePlaying:
				if item, ok := manager.CurrentItem(); ok {
					playedID = item.ID
				}
				idle.Stop()
			case player.StateIdle:
				idle.Reset(idleGrace)
			default:
				idle.Stop()
			}

		case p, ok := <-progress:
			if !ok {
				return nil
			}
			displayProgress(p, manager.IsPlaying())

		case <-idle.C:
			if manager.State() != player.StateIdle {
				continue
			}
			if item, ok := manager.CurrentItem(); ok && item.ID != playedID {
				fmt.Println()
				return fmt.Errorf("%w: %s", errPlaybackFailed, item.Title)
			}
			fmt.Println("\n✅ Воспроизведение завершено")
			return nil
		}
	}
}

// handleKey выполняет действие по клавише. Возвращает true для выхода
func handleKey(ctx context.Context, manager *playlist.Manager, key byte) (bool, error) {
	switch key {
	case ' ', '\n', '\r':
		return false, manager.TogglePause(ctx)
	case 'n':
		return false, manager.PlayNext(ctx)
	case 'p':
		return false, manager.PlayPrevious(ctx)
	case 's':
		if manager.ToggleShuffle() {
			fmt.Printf("\r\033[K🔀 Перемешивание включено\n")
		} else {
			fmt.Printf("\r\033[K➡️  Перемешивание выключено\n")
		}
		return false, nil
	case 'q':
		return true, nil
	}
	return false, nil
}

func printNowPlaying(item media.Item) {
	fmt.Printf("\r\033[K🎵 Сейчас играет:\n")
	if item.Artist != "" {
		fmt.Printf("   Исполнитель: %s\n", item.Artist)
	}
	fmt.Printf("   Название: %s\n", item.Title)
	fmt.Printf("   Источник: %s\n", item.URI)
	fmt.Println()
}

// displayProgress отображает прогресс воспроизведения
func displayProgress(p player.Progress, isPlaying bool) {
	statusIcon := "⏱️"
	statusText := streaming.StatusText(p.StuckCount)
	if !isPlaying {
		statusIcon = "⏸️"
		statusText = "На паузе"
	} else if p.StuckCount > 3 {
		statusIcon = "⚠️"
	}

	if p.Duration > 0 {
		percent := float64(p.Position) / float64(p.Duration) * 100
		fmt.Printf("\r\033[K%s  %.1f%% | %s / %s | Статус: %s",
			statusIcon,
			percent,
			utils.FormatDuration(p.Position),
			utils.FormatDuration(p.Duration),
			statusText)
		return
	}
	fmt.Printf("\r\033[K%s  %s | Статус: %s | Потоковое воспроизведение",
		statusIcon,
		utils.FormatDuration(p.Position),
		statusText)
}
