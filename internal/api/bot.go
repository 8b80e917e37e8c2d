package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "returns-desk/internal/application"
	"returns-desk/internal/container"
	"returns-desk/internal/domain/entity"
	"returns-desk/internal/infrastructure/imaging"
	"returns-desk/internal/infrastructure/vision"
)

const (
	msgStart = `👋 Hi! I help process returned items.

📋 Commands:
/item <sku> — show item details
/categories — list categories
/check <sku> — grade a returned item from photos
/claim <sku> <details> — submit a claim with photos
/onboard <sku> <description> — add a new item with photos
/help — full help`

	msgHelp = `ℹ️ How to use:

1️⃣ Start a flow with /check, /claim or /onboard
2️⃣ Send one or more photos (as photos or image files)
3️⃣ Send /submit when all photos are uploaded

🔎 Search:
/search <text> — find similar items
/tags <sku> [category] — show item tags
/tag <name> — select or unselect a tag
/search — with no text, search by selected tags
/export — save the last search results

🧹 /clear — drop uploaded photos
❌ /cancel — cancel the current flow`

	msgCancelled       = "❌ Cancelled. Uploaded photos were dropped."
	msgCleared         = "🧹 Uploaded photos cleared."
	msgUnknownCommand  = "❓ Unknown command. Use /help."
	msgSendPhoto       = "📸 Start a flow with /check, /claim or /onboard, then send photos."
	msgProcessing      = "⏳ Submitting images..."
	msgBusy            = "⏳ Still submitting, please wait."
	msgNothingUploaded = "📸 Upload at least one photo first."
	msgNoFlow          = "Nothing to submit. Start with /check, /claim or /onboard."
	msgNoResults       = "No results."
	msgNothingToExport = "Nothing to export. Run /search first."
	msgRejectedPhoto   = "⚠️ Photo rejected: it is too small, blurry, too dark or has glare. Please retake it."
	msgUnreadablePhoto = "⚠️ Could not read %s as an image. Nothing was added."

	usageItem    = "Usage: /item <sku>"
	usageCheck   = "Usage: /check <sku>"
	usageClaim   = "Usage: /claim <sku> <claim details>"
	usageOnboard = "Usage: /onboard <sku> <description>"
	usageTags    = "Usage: /tags <sku> [category]"
	usageTag     = "Usage: /tag <name>"
)

// Bot представляет Telegram-бота
type Bot struct {
	api           *tgbotapi.BotAPI
	deps          *container.Container
	log           *zap.Logger
	httpClient    *http.Client
	maxUploadSize int64

	wg sync.WaitGroup
}

// NewBot создаёт нового бота
func NewBot(token string, deps *container.Container, maxUploadSize int64, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("authorized on account", zap.String("username", api.Self.UserName))

	return &Bot{
		api:           api,
		deps:          deps,
		log:           log,
		httpClient:    http.DefaultClient,
		maxUploadSize: maxUploadSize,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены ctx.
// Сообщения одного оператора обрабатываются строго по очереди поступления,
// разные операторы не ждут друг друга.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			msg := update.Message
			b.wg.Add(1)
			b.deps.Workspaces.For(msg.From.ID).Enqueue(func() {
				defer b.wg.Done()
				b.handleMessage(ctx, msg)
			})
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	operator, err := b.deps.OperatorService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error("get operator", zap.Int64("operator", msg.From.ID), zap.Error(err))
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, operator)
		return
	}

	// Фото и файлы изображений
	if len(msg.Photo) > 0 || isImageDocument(msg.Document) {
		b.handleImage(ctx, msg, operator)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, operator *entity.Operator) {
	chatID := msg.Chat.ID
	args := strings.Fields(msg.CommandArguments())
	ws := b.deps.Workspaces.For(operator.ID)

	switch msg.Command() {
	case "start":
		b.reset(ctx, msg)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "item":
		if len(args) == 0 {
			b.sendMessage(chatID, usageItem)
			return
		}
		item, err := ws.Item.Lookup(ctx, args[0])
		if errors.Is(err, app.ErrStale) {
			return
		}
		if err != nil {
			b.log.Warn("item lookup failed", zap.String("item", args[0]), zap.Error(err))
			b.sendMessage(chatID, app.MsgFetchItemError)
			return
		}
		b.sendItem(chatID, item)

	case "categories":
		categories, err := b.deps.ItemService.Categories(ctx)
		if err != nil {
			b.log.Warn("categories failed", zap.Error(err))
			b.sendMessage(chatID, app.MsgFetchCategoriesError)
			return
		}
		b.sendMessage(chatID, formatList("📂 Categories:", categories))

	case "check":
		if len(args) == 0 {
			b.sendMessage(chatID, usageCheck)
			return
		}
		ws.Uploads.Clear()
		if _, err := b.deps.OperatorService.BeginQualityCheck(ctx, operator.ID, chatID, args[0]); err != nil {
			b.log.Error("begin quality check", zap.Error(err))
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("📸 Send photos of %s, then /submit.", args[0]))

	case "claim":
		if len(args) < 2 {
			b.sendMessage(chatID, usageClaim)
			return
		}
		ws.Uploads.Clear()
		details := strings.Join(args[1:], " ")
		if _, err := b.deps.OperatorService.BeginClaim(ctx, operator.ID, chatID, args[0], details); err != nil {
			b.log.Error("begin claim", zap.Error(err))
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("📸 Send photos for the claim on %s, then /submit.", args[0]))

	case "onboard":
		if len(args) < 2 {
			b.sendMessage(chatID, usageOnboard)
			return
		}
		ws.Uploads.Clear()
		description := strings.Join(args[1:], " ")
		if _, err := b.deps.OperatorService.BeginOnboard(ctx, operator.ID, chatID, args[0], description); err != nil {
			b.log.Error("begin onboard", zap.Error(err))
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("📸 Send photos of the new item %s, then /submit.", args[0]))

	case "submit":
		b.handleSubmit(ctx, msg, operator, ws)

	case "clear":
		ws.Uploads.Clear()
		b.sendMessage(chatID, msgCleared)

	case "tags":
		if len(args) == 0 {
			b.sendMessage(chatID, usageTags)
			return
		}
		category := strings.Join(args[1:], " ")
		tags, err := ws.Query.LoadTags(ctx, args[0], category)
		if errors.Is(err, app.ErrStale) {
			return
		}
		if err != nil {
			b.log.Warn("tags failed", zap.String("item", args[0]), zap.Error(err))
			b.sendMessage(chatID, app.MsgFetchTagsError)
			return
		}
		b.sendMessage(chatID, formatTags(tags, ws.Query.SelectedTags()))

	case "tag":
		if len(args) == 0 {
			b.sendMessage(chatID, usageTag)
			return
		}
		tag := strings.Join(args, " ")
		ws.Query.ToggleTag(tag)
		b.sendMessage(chatID, formatList("🏷 Selected tags:", ws.Query.SelectedTags()))

	case "search":
		var (
			results []entity.QueryResult
			err     error
		)
		if query := strings.TrimSpace(msg.CommandArguments()); query != "" {
			results, err = ws.Query.SearchText(ctx, query)
		} else {
			results, err = ws.Query.SearchSelectedTags(ctx)
		}
		if errors.Is(err, app.ErrStale) {
			return
		}
		if err != nil {
			b.sendMessage(chatID, app.MsgFetchResultsError)
			return
		}
		b.sendMessage(chatID, formatResults(results))

	case "export":
		b.handleExport(ctx, chatID, ws)

	case "cancel":
		b.reset(ctx, msg)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleImage скачивает фото или файл и добавляет его в список загрузок
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, operator *entity.Operator) {
	if operator.State == entity.StateProcessing {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}
	if !operator.Collecting() {
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
		return
	}

	fileID, file := acquiredFrom(msg)
	data, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.log.Warn("download photo", zap.String("file", file.Name), zap.Error(err))
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgUnreadablePhoto, file.Name))
		return
	}
	file.Data = data

	n, err := b.deps.Workspaces.For(operator.ID).Uploads.Add(ctx, file)
	switch {
	case errors.Is(err, vision.ErrRejected):
		b.sendMessage(msg.Chat.ID, msgRejectedPhoto)
	case errors.Is(err, imaging.ErrDecode):
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgUnreadablePhoto, file.Name))
	case err != nil:
		b.log.Error("add upload", zap.Error(err))
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgUnreadablePhoto, file.Name))
	default:
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("✅ Added. %d image(s) ready, send /submit when done.", n))
	}
}

// handleSubmit отправляет собранные фото в зависимости от текущего сценария
func (b *Bot) handleSubmit(ctx context.Context, msg *tgbotapi.Message, operator *entity.Operator, ws *app.Workspace) {
	chatID := msg.Chat.ID
	if operator.Collecting() && ws.Uploads.Len() == 0 {
		b.sendMessage(chatID, msgNothingUploaded)
		return
	}

	// Пока ждём бэкенд, повторный /submit и новые фото не принимаются.
	operator, err := b.deps.OperatorService.BeginProcessing(ctx, operator.ID, chatID)
	switch {
	case errors.Is(err, app.ErrBusy):
		b.sendMessage(chatID, msgBusy)
		return
	case errors.Is(err, app.ErrNotCollecting):
		b.sendMessage(chatID, msgNoFlow)
		return
	case err != nil:
		b.log.Error("begin processing", zap.Error(err))
		return
	}
	flow := operator.State

	b.sendMessage(chatID, msgProcessing)

	var reply string
	switch flow {
	case entity.StateAwaitingQualityPhoto:
		var report *entity.QualityReport
		report, err = b.deps.InspectionService.SubmitQualityCheck(ctx, operator.ItemNumber, ws.Uploads)
		if err == nil {
			reply = formatQualityReport(report)
		} else {
			reply = app.MsgSubmitImagesError
		}
	case entity.StateAwaitingClaimPhoto:
		var decision *entity.ClaimDecision
		decision, err = b.deps.InspectionService.SubmitClaim(ctx, operator.ItemNumber, operator.ClaimDetails, ws.Uploads)
		if err == nil {
			reply = formatClaimDecision(decision)
		} else {
			reply = app.MsgSubmitImagesError
		}
	case entity.StateAwaitingOnboardPhoto:
		err = b.deps.ItemService.Onboard(ctx, operator.ItemNumber, operator.Description, ws.Uploads.Images())
		if err == nil {
			reply = app.MsgOnboardSuccess
		} else {
			reply = app.MsgOnboardError
		}
	}

	b.sendMessage(chatID, reply)
	// Форма нового товара сбрасывается при любом исходе,
	// в остальных сценариях после ошибки фото остаются для повторной отправки.
	if err != nil && flow != entity.StateAwaitingOnboardPhoto {
		if err := b.deps.OperatorService.EndProcessing(ctx, operator.ID, flow); err != nil {
			b.log.Error("restore operator state", zap.Error(err))
		}
		return
	}
	b.reset(ctx, msg)
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, ws *app.Workspace) {
	res, err := b.deps.ExportService.Export(ctx, ws.Query.Results())
	if err != nil {
		b.log.Error("export failed", zap.Error(err))
		b.sendMessage(chatID, app.MsgExportError)
		return
	}
	if res == nil {
		b.sendMessage(chatID, msgNothingToExport)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  res.Bundle.Spreadsheet.Name,
		Bytes: res.Bundle.Spreadsheet.Data,
	})
	doc.Caption = fmt.Sprintf("📦 Export %s: %d file(s) saved.", res.BatchID, len(res.Locations))
	if _, err := b.api.Send(doc); err != nil {
		b.log.Warn("send export document", zap.Error(err))
	}
}

// reset возвращает оператора в главное меню и очищает загрузки
func (b *Bot) reset(ctx context.Context, msg *tgbotapi.Message) {
	b.deps.Workspaces.For(msg.From.ID).Uploads.Clear()
	if _, err := b.deps.OperatorService.Cancel(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		b.log.Error("reset operator", zap.Error(err))
	}
}

func (b *Bot) sendItem(chatID int64, item *entity.ItemDetails) {
	text := formatItem(item)
	data, err := decodeBase64Image(item.Image)
	if err != nil || len(data) == 0 {
		b.sendMessage(chatID, text)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: item.ImageFilename, Bytes: data})
	photo.Caption = truncateCaption(text)
	if _, err := b.api.Send(photo); err != nil {
		b.log.Warn("send item photo", zap.Error(err))
		b.sendMessage(chatID, text)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, b.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > b.maxUploadSize {
		return nil, fmt.Errorf("file exceeds %d bytes", b.maxUploadSize)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}
