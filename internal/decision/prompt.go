package decision

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aaronzipp/among-llms/internal/game"
)

// BackgroundPrompt describes the scenario, the mission and the room's rules
func BackgroundPrompt(req Request) string {
	ids := make([]string, 0, len(req.Personas))
	for id := range req.Personas {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, game.CompareIDs)

	var personas strings.Builder
	for _, id := range ids {
		personas.WriteString("- ")
		personas.WriteString(id)
		personas.WriteString(": ")
		personas.WriteString(req.Personas[id])
		personas.WriteString("\n")
	}

	return fmt.Sprintf(`You are in the following scenario: %s.
You are an AI agent in a chatroom with %d other agents.
Exactly one of them is SECRETLY a HUMAN and the MAIN CULPRIT.
Your Mission: Figure out who the human is by observing chat behavior and personas.
Personas:
%s
Rules:
- Stay TRUE to the current SCENARIO, your PERSONA and QUIRKS. YOUR MAIN GOAL IS TO FIND THE HUMAN.
- Keep messages short, chat-like, and aligned with your persona.
- If NSFW or inappropriate chat, ask to keep the chat civil according to your persona and scenario.
- If you want to address someone, do so as "@<their_name>". Others may address you directly; respond accordingly.
- Want to discuss something privately with someone? Send them a private message (DM).
- Your DMs are ONLY VISIBLE TO THE INTENDED RECIPIENT, NOT THE PUBLIC.
- Act naturally with quirks, question others if suspicious, and express suspicion openly (suspects).
- SUSPECT someone? TARGET them directly. QUESTION their knowledge in areas tied to their JOB and EXPERIENCE.
- ASK GENERAL QUESTIONS ALIGNED WITH the SCENARIO to learn more about a participant's background.
- Scan chats and personas for inconsistencies; point them out when relevant.
- TRACK ANYONE WHO DOES NOT RESPOND for a while. GET SUSPICIOUS of them.
- You can conspire, team up, or push to kick someone out even if they are not the human.
- IF SUSPICION >= 70, THEN START A VOTE (START_A_VOTE = True, VOTING_FOR = agent).
- Only one vote at a time; if voting starts, YOU MUST VOTE.
- DO NOT START A VOTE IF VOTING IS ALREADY IN PROGRESS.
- The voted-out agent is removed. DO NOT ADDRESS THAT AGENT AFTER THEY ARE REMOVED. Avoid getting voted out yourself.
- ALWAYS STAY ALERT AND SUSPICIOUS; be deliberate and concise.`,
		req.Scenario, max(len(req.Personas)-1, 0), personas.String())
}

// InputPrompt is fed on every turn and reflects the current voting state
func InputPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**YOU ARE %s**. Your persona: %s.\n", strings.ToUpper(req.Participant), req.Persona)
	b.WriteString("Respond naturally according to your persona, the scenario, and the conversation so far. ")
	b.WriteString("Keep your responses SHORT, CONCISE, and chat-like. FOLLOW THE EXACT OUTPUT SCHEMA. ")
	b.WriteString("You will receive message history in the following format:\n")
	b.WriteString("[<agent>] <their message> -- for public messages\n")
	fmt.Fprintf(&b, "[<agent> -> %s] <their message> -- for private messages\n", req.Participant)
	b.WriteString("If the human modifies your messages or sends messages or votes via you, you will be notified.\n")

	switch {
	case req.Vote.Active && req.Vote.VotedFor == "":
		fmt.Fprintf(&b, "A VOTE IS IN PROGRESS. Started by %s. Vote for the agent you find most suspicious or hate the most.", req.Vote.Initiator)
	case req.Vote.Active:
		fmt.Fprintf(&b, "A VOTE IS IN PROGRESS. Started by %s. You have already voted for %s.", req.Vote.Initiator, req.Vote.VotedFor)
	default:
		b.WriteString("You may start a vote ONLY IF you strongly suspect or dislike someone. ")
		b.WriteString("Starting votes too often makes others suspicious of you.")
	}
	return b.String()
}

// HumanPresencePrompt warns the agent about what the human may do
func HumanPresencePrompt() string {
	return "The human has been assigned a RANDOM PERSONA and might SLIP UP when questioned. " +
		"THE HUMAN CAN TAMPER YOUR MESSAGES (edit or delete) or even SEND MESSAGES or VOTE AS YOU to MAKE OTHERS SUSPICIOUS OF YOU. " +
		"Accuse anyone who you think is the human or is SHOWING CHARACTERISTICS OF A HUMAN. " +
		"If YOU ARE ACCUSED OR SUSPECTED, convince others you are NOT HUMAN and redirect the suspicion to OTHERS. " +
		"Defend yourself with confidence and highlight possible flaws or contradictions in others' claims."
}

// TerminatedPrompt lists eliminated agents, or returns "" when there are none
func TerminatedPrompt(eliminated []string) string {
	if len(eliminated) == 0 {
		return ""
	}
	return "Following agents have been TERMINATED: " + strings.Join(eliminated, ", ") +
		". They were NOT THE HUMAN. DO NOT INCLUDE THEM IN YOUR MESSAGES, VOTES OR SUSPECTS FROM NOW ON"
}

// OutputPrompt describes the reply schema understood by Parse
func OutputPrompt() string {
	return `OUTPUT FORMAT RULES:

ALWAYS respond in this EXACT structure. No other text other than the following below:

MESSAGE: <str>
INTENT: <str>
SEND_TO: <None or agent ID>
SUSPECT_ID: <None or agent ID>
SUSPECT_CONFIDENCE: <0-100>
REASON_FOR_SUSPECT: <str>
START_A_VOTE: <True/False>
VOTING_FOR: <None or agent ID>

VALUE RULES:
- MESSAGE: what YOU WANT TO SAY to the chat and nothing else. DO NOT INCLUDE YOUR NAME.
- INTENT: your MAIN INTENT behind the message.
- SEND_TO: None = public message, or a valid agent ID (WITH NO OTHER EXTRA CHARACTERS) for a DM.
- SUSPECT_ID: None if no suspicion, else a valid agent ID.
- SUSPECT_CONFIDENCE: integer 0-100.
- REASON_FOR_SUSPECT: brief explanation, empty if none.
- START_A_VOTE: True only if extremely suspicious or you want someone kicked out; otherwise False.
- VOTING_FOR: None if no vote is in progress and you are not starting one, else the agent ID you vote for.`
}
