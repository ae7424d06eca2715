package dialogue

// Reply pools. Lines are picked, never generated; see Engine.pick.

var holdLines = []string{
	"Okay, I'm checking now. Please wait a minute.",
	"One minute... app is loading.",
	"Hold on, network is weak here. I'm retrying.",
}

var exitLines = []string{
	"OTP still hasn't come. I'm calling the bank helpline to complete verification.",
	"My app crashed. I'll retry after network improves and finish verification.",
	"Network is very weak here. I'll move outside and complete the verification after that.",
	"I'm going to verify this with the bank directly first. I'll update you after they confirm.",
}

var placeholderBeneficiaryTactics = []string{
	"My bank app blocks if the beneficiary name is generic. What exact full name will appear on the screen?",
	"That name looks like a placeholder. Tell me the exact beneficiary name as shown in bank (full name).",
	"Please send the beneficiary name exactly as it should appear (not a sample name).",
}

var linkTactics = []string{
	"It opens but shows blank. Paste the full verification link again exactly (not short link).",
	"It says 'invalid page' on my phone. Send the full URL again without any extra dots/symbols.",
	"Okay don't send screenshot. Just paste the exact full link and the steps I should follow.",
	"Send the full link again and the official helpline number in case the link fails.",
}

var handleTactics = []string{
	"My UPI app shows 'invalid handle'. Is it @ybl / @okhdfcbank / @upi type? Please confirm the handle part.",
	"Before I proceed, what beneficiary name should show for this UPI on the payment screen?",
	"Google Pay shows 'name mismatch'. What exact name should appear for this UPI ID?",
	"If UPI fails, can I do bank transfer? Share account number + IFSC + branch city.",
}

var accountTactics = []string{
	"Okay noted. My bank app needs IFSC + branch city. Please send IFSC and branch/region.",
	"What exact beneficiary name will appear for this account? I don't want a mismatch.",
	"Send IFSC code + beneficiary name exactly as it should appear, and confirm it's for verification/unblocking.",
	"Do you have an alternate account/UPI too? Send both so I can try if one fails.",
}

var phoneTactics = []string{
	"Is this the official support number? Send the alternate helpline number too.",
	"Okay. What should I say on call to complete verification? Give the exact steps.",
	"If this number is busy, what's the backup number/WhatsApp support?",
}

var hookLines = []string{
	"Why is it getting blocked? What should I do right now?",
	"I don't understand... is this really the bank? What's the next step?",
	"I'm outside and panicking. Tell me what to do step by step.",
}

var excuses = []string{
	"I'm outside, network is weak.",
	"I'm using my mother's phone, it's slow.",
	"My UPI app is stuck on loading.",
	"The page is not opening properly on my phone.",
}

// frictionLead is completed by an excuse the first few times it is used.
const frictionLead = "Please send the full verification link and the helpline number you want me to call."

var frictionLines = []string{
	frictionLead,
	"Before I do anything, tell me the beneficiary name and IFSC. I don't want to send to wrong person.",
	"OTP doesn't seem to come. Which official support number should I call? Send the number.",
	"Send the details in one message: link + UPI (or account+IFSC) + beneficiary name.",
}

var extractLines = []string{
	"Okay. Send the full link + payment details (UPI or account + IFSC) together in one message.",
	"Send the official helpline number + full URL. If UPI fails, share bank account + IFSC too.",
	"What beneficiary name should appear and what's the IFSC? Send everything in one message.",
}

var (
	missingLinkProbes = []string{
		"Screenshot isn't possible for me. Please paste the full verification link exactly (no short link).",
		"The link isn't opening. Send the full URL again, without any extra punctuation.",
	}
	missingPhoneProbes = []string{
		"OTP is not coming. Which official support number should I call back right now?",
		"This SMS came from an unknown number. Send the helpline number I should call to verify.",
	}
	missingBeneficiaryProbes = []string{
		"My app shows 'name mismatch' sometimes. What exact beneficiary name should appear (full name)?",
	}
	missingRoutingProbes = []string{
		"If UPI fails, I'll do bank transfer. Share account number + IFSC + branch city.",
	}
	fillerProbes = []string{
		"The page is asking extra details. What exact steps should I follow to complete verification?",
		"Is the verification time-limited? How many minutes do I have?",
		"I'm going to call the bank first if OTP doesn't come. Send the official number to call.",
	}
)

const fallbackLine = "Can you resend the details clearly once? (full link + payment info + helpline)"

// NotScamLine answers messages that have not been classified as a scam.
const NotScamLine = "Okay. Can you explain what you need help with?"

// ResendLine answers requests that carried no usable message text.
const ResendLine = "I didn't receive the full message. Please resend the exact text you got."
