// Package cryptofolio tracks a personal crypto-currency portfolio. It is
// local-first: every purchase and staking gain is a record in a local
// database, and market prices come from a public price API.
//
// The core functionalities include:
//   - Portfolio records: purchases with their fees, and staking gains that
//     add coins at no cost, labelled by wallet and by risk type.
//   - Analysis: a stateless aggregation of the records per coin (or per coin
//     and wallet) valued with current prices, net of selling fees.
//   - Alerts: take-profit and stop-loss signals on risky coins.
//   - History: analysis snapshots kept over time to plot each coin's evolution.
//   - Import/export: a human readable JSONL format.
//
// This package serves as the foundational logic for the `cfo` command-line
// tool and its web dashboard.
package cryptofolio
