package telegram

import (
	"encoding/base64"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"returns-desk/internal/domain/entity"
)

// Telegram ограничивает подпись к фото 1024 символами.
const maxCaptionLen = 1024

func isImageDocument(doc *tgbotapi.Document) bool {
	return doc != nil && strings.HasPrefix(doc.MimeType, "image/")
}

// acquiredFrom возвращает ID файла в Telegram и заготовку файла без данных.
// Из набора размеров фото берём самый большой.
func acquiredFrom(msg *tgbotapi.Message) (string, entity.AcquiredFile) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return photo.FileID, entity.AcquiredFile{
			Name:        "photo_" + photo.FileUniqueID + ".jpg",
			ContentType: "image/jpeg",
		}
	}

	doc := msg.Document
	name := doc.FileName
	if name == "" {
		name = "file_" + doc.FileUniqueID
	}
	return doc.FileID, entity.AcquiredFile{
		Name:        name,
		ContentType: doc.MimeType,
	}
}

func formatList(title string, items []string) string {
	if len(items) == 0 {
		return title + " none"
	}
	var sb strings.Builder
	sb.WriteString(title)
	for _, item := range items {
		sb.WriteString("\n• ")
		sb.WriteString(item)
	}
	return sb.String()
}

func formatItem(item *entity.ItemDetails) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 %s\n%s", item.ItemNumber, item.Description)
	if item.DecisionModel != "" {
		fmt.Fprintf(&sb, "\n\n✅ Checklist:\n%s", item.DecisionModel)
	}
	if item.ClaimApprovalModel != "" {
		fmt.Fprintf(&sb, "\n\n🔀 Sorting model:\n%s", item.ClaimApprovalModel)
	}
	if item.SpecialCases != "" {
		fmt.Fprintf(&sb, "\n\n⚠️ Special cases:\n%s", item.SpecialCases)
	}
	if len(item.Tags) > 0 {
		fmt.Fprintf(&sb, "\n\n🏷 %s", strings.Join(item.Tags, ", "))
	}
	return sb.String()
}

// formatTags выводит теги с частотами, выбранные помечены галочкой.
func formatTags(tags []entity.TagCount, selected []string) string {
	if len(tags) == 0 {
		return "🏷 No tags."
	}
	chosen := entity.NewTagSet(selected...)

	var sb strings.Builder
	sb.WriteString("🏷 Tags (toggle with /tag <name>):")
	for _, t := range tags {
		mark := "▫️"
		if chosen.Contains(t.Tag) {
			mark = "☑️"
		}
		fmt.Fprintf(&sb, "\n%s %s (%d)", mark, t.Tag, t.Count)
	}
	return sb.String()
}

func formatResults(results []entity.QueryResult) string {
	if len(results) == 0 {
		return msgNoResults
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔎 %d result(s), /export to save:", len(results))
	for _, r := range results {
		fmt.Fprintf(&sb, "\n\n#%s %s", r.ID, r.Annotation)
	}
	return sb.String()
}

func formatQualityReport(report *entity.QualityReport) string {
	var sb strings.Builder
	sb.WriteString("📋 Grading result")
	for _, r := range report.Reasons {
		fmt.Fprintf(&sb, "\n• %s: %s", r.Factor, r.Explanation)
	}
	if report.Summary != "" {
		fmt.Fprintf(&sb, "\n\n%s", report.Summary)
	}
	return sb.String()
}

func formatClaimDecision(d *entity.ClaimDecision) string {
	var sb strings.Builder
	if d.Approved() {
		sb.WriteString("✅ Claim approved")
	} else {
		sb.WriteString("❌ Claim rejected")
	}
	if d.ValidationReasoning != "" {
		fmt.Fprintf(&sb, "\n\n%s", d.ValidationReasoning)
	}
	if d.RepairReasoning != "" {
		fmt.Fprintf(&sb, "\n\n🔧 %s", d.RepairReasoning)
	}
	if len(d.Toolkits) > 0 {
		fmt.Fprintf(&sb, "\n🧰 %s", strings.Join(d.Toolkits, ", "))
	}
	return sb.String()
}

// decodeBase64Image понимает и чистый base64, и data URL.
func decodeBase64Image(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx != -1 {
			s = s[idx+1:]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}

func truncateCaption(s string) string {
	r := []rune(s)
	if len(r) <= maxCaptionLen {
		return s
	}
	return string(r[:maxCaptionLen-1]) + "…"
}
