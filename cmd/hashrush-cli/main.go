// hashrush-cli is a command-line client for interacting with a hashrushd node.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/hashrush-gg/hashrush-core/internal/econ"
	"github.com/hashrush-gg/hashrush-core/internal/rpc"
	"github.com/hashrush-gg/hashrush-core/internal/rpcclient"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := ""
	network := "mainnet"

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--testnet":
			network = "testnet"
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if rpcURL == "" {
		if network == "testnet" {
			rpcURL = "http://127.0.0.1:8651"
		} else {
			rpcURL = "http://127.0.0.1:8650"
		}
	}

	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "price":
		cmdPrice(client, cmdArgs)
	case "leaderboard":
		cmdLeaderboard(client)
	case "account":
		cmdAccount(client, cmdArgs)
	case "mine":
		cmdMine(client, cmdArgs)
	case "trade":
		cmdTrade(client, cmdArgs)
	case "wager":
		cmdWager(client, cmdArgs)
	case "buy":
		cmdBuy(client, cmdArgs)
	case "daily":
		cmdDaily(client, cmdArgs)
	case "quest":
		cmdQuest(client, cmdArgs)
	case "admin":
		cmdAdmin(client, cmdArgs)
	case "hash-token":
		cmdHashToken()
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: hashrush-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8650)
  --testnet           Target a testnet node (default port 8651)
  --network <net>     mainnet (default) or testnet

Commands:
  status                          Show ledger status
  price [--limit <n>]             Show recent price samples
  leaderboard                     Show the hash-rate leaderboard
  account <player>                Show a player account

  mine --player <p> --amount <n>  Submit a hash contribution
  trade --player <p> --direction <sell|buy> --amount <n>
                                  Trade NRC against the reserve
  wager --player <p> --game <slots|relic> --bet <n> [--currency nrc]
                                  Play a wager mini-game
  buy --player <p> --item <id> [--currency nrc]
                                  Buy a shop upgrade
  daily --player <p>              Claim the daily reward
  quest --player <p> --id <q>     Claim a completed quest

  admin split --pool <n> --closer <n> --contributor <n>
                                  Change the block reward split
  admin caps --sell <n> --buy <n> Change daily exchange caps
  admin liquidity --amount <n>    Move treasury reserve into liquidity
  admin add-quest --id <q> --name <n> --counter <c> --goal <n> --reward <n>
                                  Add a quest
  admin remove-quest --id <q>     Remove a quest
  admin snapshot                  Trigger a state export on the node

  hash-token                      Hash an admin token for the config file

Admin commands prompt for the admin token on stdin.
`)
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	var snap econ.Snapshot
	if err := client.Call("chain_getSnapshot", nil, &snap); err != nil {
		fatal("chain_getSnapshot: %v", err)
	}

	fmt.Printf("Height:      %d\n", snap.Height)
	fmt.Printf("Difficulty:  %d\n", snap.Difficulty)
	fmt.Printf("Progress:    %d / %d\n", snap.BlockProgress, snap.Difficulty)
	fmt.Printf("Mined:       %.4f NRC\n", snap.TotalMined)
	fmt.Printf("Price:       %.6f TON\n", snap.Price)
	fmt.Printf("Pool:        %.4f NRC / %.4f TON\n", snap.RewardPoolToken, snap.RewardPoolReserve)
	fmt.Printf("Liquidity:   %.4f TON\n", snap.LiquidityReserve)
	fmt.Printf("Treasury:    %.4f TON\n", snap.TreasuryReserve)
	fmt.Printf("Rules:       v%d\n", snap.RulesVersion)
}

// ── price ───────────────────────────────────────────────────────────────

func cmdPrice(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	limit := fs.Int("limit", 10, "Samples to show (most recent last)")
	fs.Parse(args)

	var result rpc.PriceHistoryResult
	if err := client.Call("chain_getPriceHistory", nil, &result); err != nil {
		fatal("chain_getPriceHistory: %v", err)
	}

	points := result.Points
	if len(points) == 0 {
		fmt.Println("No price samples yet.")
		return
	}
	if *limit > 0 && len(points) > *limit {
		points = points[len(points)-*limit:]
	}
	for _, p := range points {
		ts := time.Unix(p.Time, 0).UTC()
		fmt.Printf("%s  %.6f TON\n", ts.Format("2006-01-02 15:04:05"), p.Price)
	}
}

// ── leaderboard ─────────────────────────────────────────────────────────

func cmdLeaderboard(client *rpcclient.Client) {
	var result rpc.LeaderboardResult
	if err := client.Call("chain_getLeaderboard", nil, &result); err != nil {
		fatal("chain_getLeaderboard: %v", err)
	}

	if len(result.Entries) == 0 {
		fmt.Println("Leaderboard is empty.")
		return
	}
	for i, e := range result.Entries {
		fmt.Printf("%3d. %-24s %14.0f hashes  %d blocks\n",
			i+1, e.Player, e.LifetimeHashes, e.BlocksClosed)
	}
}

// ── account ─────────────────────────────────────────────────────────────

func cmdAccount(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: hashrush-cli account <player>")
	}

	var result rpc.AccountResult
	if err := client.Call("account_get", rpc.PlayerParam{Player: args[0]}, &result); err != nil {
		fatal("account_get: %v", err)
	}

	a := result.Account
	fmt.Printf("Player:     %s\n", a.ID)
	fmt.Printf("Balance:    %.4f NRC / %.4f TON\n", a.TokenBalance, a.ReserveBalance)
	fmt.Printf("Click:      %.2f  Auto: %.2f/s\n", a.ClickPower, a.AutoRate)
	fmt.Printf("Lifetime:   %.0f hashes, %d blocks\n", a.LifetimeHashes, a.BlocksClosed)
	fmt.Printf("Activity:   %d trades, %d wagers\n", a.Trades, a.Wagers)
	if result.Premium {
		until := time.Unix(a.PremiumUntil, 0).UTC()
		fmt.Printf("Premium:    until %s\n", until.Format("2006-01-02 15:04:05 UTC"))
	} else {
		fmt.Printf("Premium:    no\n")
	}
	if len(a.UpgradeLevels) > 0 {
		fmt.Printf("Upgrades:\n")
		for id, level := range a.UpgradeLevels {
			fmt.Printf("  %-16s L%d\n", id, level)
		}
	}
}

// ── mine ────────────────────────────────────────────────────────────────

func cmdMine(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("mine", flag.ExitOnError)
	player := fs.String("player", "", "Player ID")
	amount := fs.Uint64("amount", 0, "Hashes to submit")
	fs.Parse(args)
	if *player == "" || *amount == 0 {
		fatal("Usage: hashrush-cli mine --player <p> --amount <n>")
	}

	var result struct {
		BlockProgress uint64  `json:"block_progress"`
		Target        uint64  `json:"target"`
		BlocksClosed  int     `json:"blocks_closed"`
		Reward        float64 `json:"reward"`
		Remaining     uint64  `json:"remaining"`
	}
	err := client.Call("mine_submitHashes",
		rpc.SubmitParam{Player: *player, Amount: *amount}, &result)
	if err != nil {
		fatal("mine_submitHashes: %v", err)
	}

	fmt.Printf("Blocks closed: %d\n", result.BlocksClosed)
	fmt.Printf("Reward:        %.4f NRC\n", result.Reward)
	fmt.Printf("Progress:      %d / %d\n", result.BlockProgress, result.Target)
	if result.Remaining > 0 {
		fmt.Printf("Remaining:     %d hashes (resubmit)\n", result.Remaining)
	}
}

// ── trade ───────────────────────────────────────────────────────────────

func cmdTrade(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("trade", flag.ExitOnError)
	player := fs.String("player", "", "Player ID")
	direction := fs.String("direction", "", "sell or buy")
	amount := fs.Float64("amount", 0, "Token amount")
	fs.Parse(args)
	if *player == "" || *direction == "" || *amount <= 0 {
		fatal("Usage: hashrush-cli trade --player <p> --direction <sell|buy> --amount <n>")
	}

	var result struct {
		AmountToken    float64 `json:"amount_token"`
		AmountReserve  float64 `json:"amount_reserve"`
		Price          float64 `json:"price"`
		TokenBalance   float64 `json:"token_balance"`
		ReserveBalance float64 `json:"reserve_balance"`
	}
	err := client.Call("exchange_trade",
		rpc.TradeParam{Player: *player, Direction: *direction, Amount: *amount}, &result)
	if err != nil {
		fatal("exchange_trade: %v", err)
	}

	fmt.Printf("Traded:  %.4f NRC at %.6f TON\n", result.AmountToken, result.Price)
	fmt.Printf("Value:   %.6f TON\n", result.AmountReserve)
	fmt.Printf("Balance: %.4f NRC / %.4f TON\n", result.TokenBalance, result.ReserveBalance)
}

// ── wager ───────────────────────────────────────────────────────────────

func cmdWager(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("wager", flag.ExitOnError)
	player := fs.String("player", "", "Player ID")
	game := fs.String("game", "slots", "slots or relic")
	bet := fs.Float64("bet", 0, "Bet amount")
	currency := fs.String("currency", "nrc", "Bet currency (nrc or ton)")
	fs.Parse(args)
	if *player == "" || *bet <= 0 {
		fatal("Usage: hashrush-cli wager --player <p> --game <slots|relic> --bet <n>")
	}

	var result struct {
		Outcome    string  `json:"outcome"`
		Multiplier float64 `json:"multiplier"`
		Jackpot    bool    `json:"jackpot"`
		Payout     float64 `json:"payout"`
		Balance    float64 `json:"balance"`
		Nonce      uint64  `json:"nonce"`
	}
	err := client.Call("wager_play",
		rpc.WagerParam{Player: *player, Game: *game, Bet: *bet, Currency: *currency}, &result)
	if err != nil {
		fatal("wager_play: %v", err)
	}

	fmt.Printf("Outcome: %s", result.Outcome)
	if result.Jackpot {
		fmt.Printf("  JACKPOT!")
	} else if result.Multiplier > 0 {
		fmt.Printf("  x%.1f", result.Multiplier)
	}
	fmt.Println()
	fmt.Printf("Payout:  %.4f %s\n", result.Payout, strings.ToUpper(*currency))
	fmt.Printf("Balance: %.4f %s\n", result.Balance, strings.ToUpper(*currency))
	fmt.Printf("Draw:    #%d\n", result.Nonce)
}

// ── buy ─────────────────────────────────────────────────────────────────

func cmdBuy(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	player := fs.String("player", "", "Player ID")
	item := fs.String("item", "", "Catalog item ID")
	currency := fs.String("currency", "nrc", "Payment currency (nrc or ton)")
	fs.Parse(args)
	if *player == "" || *item == "" {
		fatal("Usage: hashrush-cli buy --player <p> --item <id>")
	}

	var result struct {
		ItemID         string  `json:"item_id"`
		Level          int     `json:"level"`
		Cost           float64 `json:"cost"`
		TokenBalance   float64 `json:"token_balance"`
		ReserveBalance float64 `json:"reserve_balance"`
	}
	err := client.Call("shop_purchase",
		rpc.PurchaseParam{Player: *player, Item: *item, Currency: *currency}, &result)
	if err != nil {
		fatal("shop_purchase: %v", err)
	}

	fmt.Printf("Bought %s L%d for %.4f %s\n",
		result.ItemID, result.Level, result.Cost, strings.ToUpper(*currency))
	fmt.Printf("Balance: %.4f NRC / %.4f TON\n", result.TokenBalance, result.ReserveBalance)
}

// ── daily / quest ───────────────────────────────────────────────────────

func cmdDaily(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("daily", flag.ExitOnError)
	player := fs.String("player", "", "Player ID")
	fs.Parse(args)
	if *player == "" {
		fatal("Usage: hashrush-cli daily --player <p>")
	}

	var result struct {
		Reward       float64 `json:"reward"`
		TokenBalance float64 `json:"token_balance"`
	}
	if err := client.Call("daily_claim", rpc.PlayerParam{Player: *player}, &result); err != nil {
		fatal("daily_claim: %v", err)
	}

	fmt.Printf("Claimed %.4f NRC, balance %.4f NRC\n", result.Reward, result.TokenBalance)
}

func cmdQuest(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("quest", flag.ExitOnError)
	player := fs.String("player", "", "Player ID")
	id := fs.String("id", "", "Quest ID")
	fs.Parse(args)
	if *player == "" || *id == "" {
		fatal("Usage: hashrush-cli quest --player <p> --id <q>")
	}

	var result struct {
		Reward       float64 `json:"reward"`
		TokenBalance float64 `json:"token_balance"`
	}
	err := client.Call("quest_claim",
		rpc.QuestClaimParam{Player: *player, Quest: *id}, &result)
	if err != nil {
		fatal("quest_claim: %v", err)
	}

	fmt.Printf("Quest %q paid %.4f NRC, balance %.4f NRC\n", *id, result.Reward, result.TokenBalance)
}

// ── admin ───────────────────────────────────────────────────────────────

func cmdAdmin(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: hashrush-cli admin <split|caps|liquidity|add-quest|remove-quest|snapshot>")
	}

	sub := args[0]
	subArgs := args[1:]

	switch sub {
	case "split":
		fs := flag.NewFlagSet("admin split", flag.ExitOnError)
		pool := fs.Int("pool", 0, "Pool percentage")
		closer := fs.Int("closer", 0, "Closer percentage")
		contributor := fs.Int("contributor", 0, "Contributor percentage")
		fs.Parse(subArgs)

		token := readToken()
		callAdmin(client, "admin_setRewardSplit", rpc.AdminSplitParam{
			Token: token, PoolPct: *pool, CloserPct: *closer, ContributorPct: *contributor,
		})
		fmt.Println("Reward split updated.")

	case "caps":
		fs := flag.NewFlagSet("admin caps", flag.ExitOnError)
		sell := fs.Float64("sell", 0, "Max daily sell (tokens)")
		buy := fs.Float64("buy", 0, "Max daily buy (tokens)")
		fs.Parse(subArgs)

		token := readToken()
		callAdmin(client, "admin_setExchangeCaps", rpc.AdminCapsParam{
			Token: token, MaxDailySell: *sell, MaxDailyBuy: *buy,
		})
		fmt.Println("Exchange caps updated.")

	case "liquidity":
		fs := flag.NewFlagSet("admin liquidity", flag.ExitOnError)
		amount := fs.Float64("amount", 0, "Reserve to move from treasury")
		fs.Parse(subArgs)

		token := readToken()
		callAdmin(client, "admin_injectLiquidity", rpc.AdminLiquidityParam{
			Token: token, Amount: *amount,
		})
		fmt.Printf("Injected %.4f TON into liquidity.\n", *amount)

	case "add-quest":
		fs := flag.NewFlagSet("admin add-quest", flag.ExitOnError)
		id := fs.String("id", "", "Quest ID")
		name := fs.String("name", "", "Display name")
		counter := fs.String("counter", "", "Lifetime counter (lifetime_hashes, blocks_closed, trades, wagers)")
		goal := fs.Float64("goal", 0, "Counter goal")
		reward := fs.Float64("reward", 0, "Token reward")
		fs.Parse(subArgs)

		token := readToken()
		callAdmin(client, "admin_addQuest", rpc.AdminQuestParam{
			Token: token, ID: *id, Name: *name, Counter: *counter, Goal: *goal, Reward: *reward,
		})
		fmt.Printf("Quest %q added.\n", *id)

	case "remove-quest":
		fs := flag.NewFlagSet("admin remove-quest", flag.ExitOnError)
		id := fs.String("id", "", "Quest ID")
		fs.Parse(subArgs)

		token := readToken()
		callAdmin(client, "admin_removeQuest", rpc.AdminRemoveQuestParam{Token: token, ID: *id})
		fmt.Printf("Quest %q removed.\n", *id)

	case "snapshot":
		token := readToken()
		var result rpc.SnapshotExportResult
		if err := client.Call("admin_snapshot", rpc.AdminParam{Token: token}, &result); err != nil {
			fatal("admin_snapshot: %v", err)
		}
		fmt.Printf("Snapshot written to %s\n", result.File)

	default:
		fatal("Unknown admin command: %s", sub)
	}
}

// callAdmin invokes an admin mutation and discards the OK result.
func callAdmin(client *rpcclient.Client, method string, params interface{}) {
	var ok rpc.OKResult
	if err := client.Call(method, params, &ok); err != nil {
		fatal("%s: %v", method, err)
	}
}

// ── hash-token ──────────────────────────────────────────────────────────

func cmdHashToken() {
	token, err := readPassword("New admin token: ")
	if err != nil {
		fatal("read token: %v", err)
	}
	again, err := readPassword("Repeat admin token: ")
	if err != nil {
		fatal("read token: %v", err)
	}
	if string(token) != string(again) {
		fatal("tokens do not match")
	}
	if len(token) == 0 {
		fatal("token must not be empty")
	}

	hash, err := rpc.HashToken(string(token))
	if err != nil {
		fatal("hash token: %v", err)
	}

	fmt.Println("Add to the node's config file:")
	fmt.Printf("rpc.admintoken = %s\n", hash)
}

// ── Password helpers ────────────────────────────────────────────────────

func readToken() string {
	token, err := readPassword("Admin token: ")
	if err != nil {
		fatal("read token: %v", err)
	}
	return string(token)
}

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
