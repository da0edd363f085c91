package chat

import "somadev/internal/domain"

// DefaultKeywords trigger the app creation flow when found in the lowercased
// input.
var DefaultKeywords = []string{"criar", "app", "aplicativo"}

const planReply = "Entendido! Vou coordenar a criação do seu app. \n\n" +
	"Estou convocando:\n" +
	"- **@SomaArch** para definir a arquitetura\n" +
	"- **@SomaDesign** para o design visual\n\n" +
	"📋 **Plano de Ação:**\n" +
	"1. O @SomaArch analisará os requisitos técnicos.\n" +
	"2. O @SomaDesign criará o canvas visual.\n" +
	"3. @SomaFront e @SomaBack implementarão a solução.\n\n" +
	"Você concorda com este plano?"

const confirmReply = "✅ **Ótimo!**\n\n" +
	"@SomaArch, por favor, assuma a liderança da arquitetura no Canvas.\n\n" +
	"Redirecionando para o ambiente de trabalho..."

// cannedReplies answer anything outside the creation flow.
var cannedReplies = []string{
	"Compreendo. Como orquestradora, posso chamar o @SomaArch se precisar de definições técnicas ou o @SomaDesign se for algo visual. Como prefere seguir?",
	"Interessante. Vou analisar isso junto com o esquadrão. Se for uma questão de infraestrutura, o @SomaOps é o mais indicado.",
	"Posso ajudar com isso. O que acha de começarmos desenhando a estrutura básica? Posso pedir sugestões ao @SomaArch.",
}

// CannedReplies returns the fallback reply set.
func CannedReplies() []string {
	return append([]string(nil), cannedReplies...)
}

// PlanReply and ConfirmReply are the two messages of the creation flow.
func PlanReply() string    { return planReply }
func ConfirmReply() string { return confirmReply }

var replyAgent = domain.Orchestrator
