package render

import (
	"fmt"
	"html/template"
	"strings"
)

var (
	boardTmpl     = template.Must(template.New("board").Parse(boardPage))
	dashboardTmpl = template.Must(template.New("dashboard").Parse(dashboardPage))
)

type boardPageData struct {
	GameID           string
	FEN              string
	WhitePerspective bool
}

// BoardHTML renders a self-contained, click-to-move HTML board. Moves are
// submitted straight to the JSON move endpoint, so the same page serves
// both the dashboard game view and an embeddable UI resource.
func BoardHTML(fen, gameID string, whitePerspective bool) (string, error) {
	var b strings.Builder
	data := boardPageData{GameID: gameID, FEN: fen, WhitePerspective: whitePerspective}
	if err := boardTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render board page: %w", err)
	}
	return b.String(), nil
}

// Dashboard renders the index page listing every game in creation order.
func Dashboard(rows []GameRow) (string, error) {
	var b strings.Builder
	if err := dashboardTmpl.Execute(&b, rows); err != nil {
		return "", fmt.Errorf("render dashboard: %w", err)
	}
	return b.String(), nil
}

const boardPage = `<!DOCTYPE html>
<html>
<head>
<title>Game {{.GameID}}</title>
<style>
    body { font-family: sans-serif; display: flex; flex-direction: column; align-items: center; }
    .board { display: grid; grid-template-columns: repeat(8, 40px); grid-template-rows: repeat(8, 40px); border: 2px solid #333; }
    .square { width: 40px; height: 40px; display: flex; justify-content: center; align-items: center; font-size: 30px; cursor: pointer; }
    .light { background-color: #f0d9b5; }
    .dark { background-color: #b58863; }
    .selected { background-color: #7b61ff !important; }
    .controls { margin-top: 10px; display: flex; flex-direction: column; gap: 5px; }
    input, button { padding: 5px; }
    #status { margin-top: 10px; font-weight: bold; }
</style>
</head>
<body>
    <h2>Game: {{.GameID}}</h2>
    <div id="board" class="board"></div>

    <div class="controls">
        <div>
            <label>Move (UCI): <input type="text" id="uciInput" placeholder="e2e4"></label>
        </div>
        <div>
            <label><input type="checkbox" id="chkClaimWin"> Claim Checkmate/Win</label>
        </div>
        <button onclick="submitMove()">Submit Move</button>
    </div>
    <div id="status"></div>

<script>
    const fen = {{.FEN}};
    const gameId = {{.GameID}};
    const whitePerspective = {{.WhitePerspective}};

    const pieceMap = {
        'r': '♜', 'n': '♞', 'b': '♝', 'q': '♛', 'k': '♚', 'p': '♟',
        'R': '♖', 'N': '♘', 'B': '♗', 'Q': '♕', 'K': '♔', 'P': '♙'
    };

    let selectedSq = null;

    function renderBoard() {
        const boardEl = document.getElementById('board');
        boardEl.innerHTML = '';
        let rows = fen.split(' ')[0].split('/');
        if (!whitePerspective) {
            rows = rows.slice().reverse().map(r => r.split('').reverse().join(''));
        }
        for (let r = 0; r < 8; r++) {
            let fileIdx = 0;
            const rankStr = rows[r];
            for (let i = 0; i < rankStr.length; i++) {
                const char = rankStr[i];
                if (isNaN(char)) {
                    createSquare(r, fileIdx, char);
                    fileIdx++;
                } else {
                    const empties = parseInt(char);
                    for (let k = 0; k < empties; k++) {
                        createSquare(r, fileIdx, null);
                        fileIdx++;
                    }
                }
            }
        }
    }

    function createSquare(row, col, pieceChar) {
        const div = document.createElement('div');
        const isLight = (row + col) % 2 === 0;
        div.className = 'square ' + (isLight ? 'light' : 'dark');
        if (pieceChar) {
            div.textContent = pieceMap[pieceChar] || pieceChar;
        }
        div.onclick = () => onSquareClick(row, col, div);
        document.getElementById('board').appendChild(div);
    }

    function coordOf(row, col) {
        if (whitePerspective) {
            return String.fromCharCode(97 + col) + (8 - row);
        }
        return String.fromCharCode(97 + (7 - col)) + (row + 1);
    }

    function onSquareClick(row, col, div) {
        const coord = coordOf(row, col);
        if (!selectedSq) {
            selectedSq = coord;
            div.classList.add('selected');
            document.getElementById('status').innerText = 'Selected: ' + coord;
        } else {
            const move = selectedSq + coord;
            document.getElementById('uciInput').value = move;
            selectedSq = null;
            document.querySelectorAll('.selected').forEach(el => el.classList.remove('selected'));
            document.getElementById('status').innerText = 'Move ready: ' + move;
        }
    }

    function submitMove() {
        const move = document.getElementById('uciInput').value;
        if (!move) {
            alert('Please enter or select a move');
            return;
        }
        const claimWin = document.getElementById('chkClaimWin').checked;
        document.getElementById('status').innerText = 'Submitting ' + move + '...';
        fetch('/api/games/' + gameId + '/moves', {
            method: 'POST',
            headers: { 'Content-Type': 'application/json' },
            body: JSON.stringify({ move: move, claim_win: claimWin })
        }).then(resp => resp.json()).then(body => {
            if (body.kind) {
                document.getElementById('status').innerText = 'Rejected: ' + body.message;
            } else {
                location.reload();
            }
        }).catch(err => {
            document.getElementById('status').innerText = 'Error: ' + err;
        });
    }

    renderBoard();
</script>
</body>
</html>`

const dashboardPage = `<html>
<head><title>Chess Arena Dashboard</title>
<style>
    body { font-family: sans-serif; margin: 20px; }
    table { border-collapse: collapse; min-width: 700px; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    tr:nth-child(even) { background-color: #f2f2f2; }
    .copy-btn { cursor: pointer; background: #007bff; color: white; border: none; padding: 5px 10px; border-radius: 3px; }
    .copy-btn:hover { background: #0056b3; }
    .fen { font-family: monospace; font-size: 12px; }
</style>
<script>
    function copyJoin(gameId) {
        const text = 'Please join chess game ' + gameId;
        navigator.clipboard.writeText(text).then(() => {
            alert('Copied to clipboard: ' + text);
        }).catch(() => {
            prompt('Copy this text:', text);
        });
    }
</script>
</head>
<body>
<h1>Active Chess Games</h1>
<table>
    <tr><th>ID</th><th>White</th><th>Black</th><th>Status</th><th>FEN</th><th>Action</th></tr>
{{range .}}    <tr>
        <td><a href="/game/{{.ID}}">{{.ID}}</a></td>
        <td>{{.White}}</td>
        <td>{{.Black}}</td>
        <td>{{if .Result}}{{.Result}}{{else}}{{.Turn}} to move{{end}}</td>
        <td class="fen">{{.FEN}}</td>
        <td><button class="copy-btn" onclick="copyJoin('{{.ID}}')">Copy Join Prompt</button></td>
    </tr>
{{end}}</table>
<br><a href="/">Refresh</a>
</body>
</html>`
