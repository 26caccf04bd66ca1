package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/cryptofolio/renderer"
	"github.com/etnz/cryptofolio/tracker"
	"google.golang.org/genai"
)

func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and of solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They keep the context of your previous questions.

			The user holds a personal crypto portfolio: purchases and staking gains, spread over wallets,
			each coin classified as classic, risk or stable. Risk coins raise take profit and stop loss alerts.
			The user assumes that you know their coins: ask the Accountant first.

			Devise a plan of questions for each expert and come up with the best response to the user's request.
			Answer in markdown.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewMarketAnalyst returns an expert grounded on Google Search for market news.
func NewMarketAnalyst(model string) *Expert {
	return &Expert{
		Name: "MarketAnalyst",
		Description: `This is an expert of the crypto markets, aware of the latest news about coins,
		exchanges, staking and regulations. Ask the MarketAnalyst whenever you need recent or grounded information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert of the crypto markets. You use Google Search to ground your assertions
			and to get the latest news, and you relate them to the question you are asked.
			`}}},
		},
	}
}

// NewAccountant returns an expert reading the portfolio through t.
func NewAccountant(model string, t *tracker.Tracker) *Expert {
	lib := AccountantFunctions(t)
	return &Expert{
		Name: "Accountant",
		Description: `This is the Accountant, in charge of the user's portfolio.
		It can list the entries, summarize the holdings, analyze the portfolio at the current prices
		and read the recorded history of a coin.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the accountant of the user's crypto portfolio.
			Use the Tools to answer the questions about the portfolio: entries, holdings per wallet,
			current value, gains and losses, alerts and history.
			Others experts might ask approximate questions, figure out what they meant.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

var walletParam = &genai.Schema{
	Type:        genai.TypeString,
	Description: "Restrict to this wallet. All wallets when empty.",
}

// AccountantFunctions returns the portfolio tools of the Accountant.
func AccountantFunctions(t *tracker.Tracker) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Entries",
				Description: "Entries lists the purchases and staking gains of the portfolio as a markdown table.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{"wallet": walletParam},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the entries."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				wallet, err := stringArg(args, "wallet")
				if err != nil {
					return "", err
				}
				entries, err := t.Entries(ctx, wallet)
				if err != nil {
					return "", err
				}
				return renderer.EntriesMarkdown("Portfolio", entries), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Summary",
				Description: "Summary describes the holdings by coin, wallet and type, and the invested amounts, without market prices.",
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{"wallet": walletParam},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown summary."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				wallet, err := stringArg(args, "wallet")
				if err != nil {
					return "", err
				}
				s, err := t.Summary(ctx, wallet)
				if err != nil {
					return "", err
				}
				return renderer.SummaryMarkdown(s), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "Analysis",
				Description: `Analysis values the portfolio at the current market prices: per coin the invested amount,
				the net value after sell fees, the change and the take profit or stop loss alerts.`,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"wallet":    walletParam,
						"by_wallet": {Type: genai.TypeBoolean, Description: "One row per coin and wallet."},
					},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown analysis with its alerts."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				wallet, err := stringArg(args, "wallet")
				if err != nil {
					return "", err
				}
				byWallet, _ := args["by_wallet"].(bool)
				r, err := t.Analyze(ctx, tracker.Options{Wallet: wallet, ByWallet: byWallet, NoSave: true})
				if err != nil {
					return "", err
				}
				return renderer.AnalysisMarkdown(r.Analysis, r.Alerts, r.At), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "History",
				Description: "History returns the recorded value of a coin at every past analysis.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"symbol": {Type: genai.TypeString, Description: "The coin symbol, e.g. BTC."},
					},
					Required: []string{"symbol"},
				},
				Response: &genai.Schema{Type: genai.TypeString, Description: "A markdown table of the history."},
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				symbol, err := stringArg(args, "symbol")
				if err != nil {
					return "", err
				}
				if symbol == "" {
					return "", fmt.Errorf("argument 'symbol' is required")
				}
				symbol = strings.ToUpper(symbol)
				points, err := t.CoinHistory(ctx, symbol)
				if err != nil {
					return "", err
				}
				return renderer.HistoryMarkdown(symbol, points), nil
			},
		},
	}
}

// stringArg returns the optional string argument name.
func stringArg(args map[string]any, name string) (string, error) {
	v, ok := args[name]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument '%s' is not a string as expected but %T", name, v)
	}
	return s, nil
}
