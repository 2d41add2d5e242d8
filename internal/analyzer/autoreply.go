package analyzer

const scamReply = "Thank you for reaching out. After careful review, I have decided " +
	"not to proceed with this opportunity. I do not engage with positions that " +
	"request upfront payments, financial details, or personal documents before a " +
	"formal interview. Please remove my contact information from your records."

const legitReply = "Thank you for sharing this opportunity. I am interested in " +
	"learning more about the role. Could you tell me about the team, the " +
	"day-to-day responsibilities, and the next steps in your interview process? " +
	"I look forward to hearing from you."

// AutoReply returns a canned response the user can send back, a polite
// decline for scams and a follow-up for postings that look legitimate.
func AutoReply(isScam bool) string {
	if isScam {
		return scamReply
	}
	return legitReply
}
