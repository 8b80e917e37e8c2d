package entity

// OperatorState состояние оператора в диалоге
type OperatorState string

const (
	StateMainMenu             OperatorState = "main_menu"              // В главном меню
	StateAwaitingQualityPhoto OperatorState = "awaiting_quality_photo" // Сбор фото для проверки качества
	StateAwaitingClaimPhoto   OperatorState = "awaiting_claim_photo"   // Сбор фото по претензии
	StateAwaitingOnboardPhoto OperatorState = "awaiting_onboard_photo" // Сбор фото нового товара
	StateProcessing           OperatorState = "processing"             // Ждём ответа бэкенда
)

// Operator представляет сотрудника склада, работающего через бота
type Operator struct {
	ID           int64         // Telegram User ID
	ChatID       int64         // Telegram Chat ID
	State        OperatorState // Текущее состояние
	ItemNumber   string        // SKU, с которым сейчас работает оператор
	ClaimDetails string        // Текст претензии
	Description  string        // Описание нового товара
}

// NewOperator создаёт оператора с начальным состоянием
func NewOperator(operatorID, chatID int64) *Operator {
	return &Operator{
		ID:     operatorID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние оператора
func (o *Operator) SetState(state OperatorState) {
	o.State = state
}

// Reset возвращает оператора в главное меню и забывает текущую форму
func (o *Operator) Reset() {
	o.State = StateMainMenu
	o.ItemNumber = ""
	o.ClaimDetails = ""
	o.Description = ""
}

// Collecting сообщает, ждёт ли бот фотографии от оператора
func (o *Operator) Collecting() bool {
	switch o.State {
	case StateAwaitingQualityPhoto, StateAwaitingClaimPhoto, StateAwaitingOnboardPhoto:
		return true
	}
	return false
}
