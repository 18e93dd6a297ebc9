package assembler

import "text/template"

// stubTemplate renders index.<ext>: one re-exported async stub per tool
// that forwards to the generated runtime's callTool RPC.
var stubTemplate = template.Must(template.New("index").Parse(`// Generated by the code assembler. Do not edit.
import { callTool } from "./runtime";
{{range .Tools}}
export async function {{.Name}}(input: {{.InputType}}): Promise<{{.OutputType}}> {
  return callTool("{{.Name}}", input) as Promise<{{.OutputType}}>;
}
{{end}}`))

// runtimeTemplate renders runtime.<ext>: the in-sandbox RPC implementation
// per the protocol in section 4.5 — canonicalize, consult the per-execution
// cache, write a request file, print the request sentinel, poll for a
// response with exponential backoff, then resume.
var runtimeTemplate = template.Must(template.New("runtime").Parse(`// Generated by the code assembler. Do not edit.
import * as fs from "fs/promises";
import * as crypto from "crypto";

const REQUESTS_DIR = "{{.RequestsDir}}";
const RESPONSES_DIR = "{{.ResponsesDir}}";
const CACHE_FILE = "{{.CacheFile}}";
const POLL_INITIAL_MS = 10;
const POLL_BACKOFF = 1.5;
const POLL_CAP_MS = 1000;
const POLL_BUDGET_MS = 60000;

function canonicalize(value: any): string {
  if (value === null || typeof value !== "object") return JSON.stringify(value);
  if (Array.isArray(value)) return "[" + value.map(canonicalize).join(",") + "]";
  const keys = Object.keys(value).sort();
  return "{" + keys.map((k) => JSON.stringify(k) + ":" + canonicalize(value[k])).join(",") + "}";
}

function cacheKeyFor(tool: string, args: any): string {
  const canon = tool + ":" + canonicalize(args);
  return crypto.createHash("sha256").update(canon).digest("hex");
}

async function readCache(): Promise<Record<string, any>> {
  try {
    const raw = await fs.readFile(CACHE_FILE, "utf8");
    return JSON.parse(raw);
  } catch {
    return {};
  }
}

async function writeCache(cache: Record<string, any>): Promise<void> {
  await fs.writeFile(CACHE_FILE, JSON.stringify(cache));
}

function freshRequestId(): string {
  return Date.now().toString(36) + "-" + crypto.randomBytes(6).toString("hex");
}

export async function callTool(tool: string, args: any): Promise<any> {
  const cacheKey = cacheKeyFor(tool, args);
  const cache = await readCache();
  if (Object.prototype.hasOwnProperty.call(cache, cacheKey)) {
    return cache[cacheKey];
  }

  const requestId = freshRequestId();
  const requestPath = ` + "`${REQUESTS_DIR}/${requestId}.json`" + `;
  const responsePath = ` + "`${RESPONSES_DIR}/${requestId}.json`" + `;

  await fs.writeFile(requestPath, JSON.stringify({ requestId, tool, args, cacheKey }));
  console.log("{{.RequestSentinel}}" + requestId);

  const deadline = Date.now() + POLL_BUDGET_MS;
  let delay = POLL_INITIAL_MS;
  while (Date.now() < deadline) {
    try {
      const raw = await fs.readFile(responsePath, "utf8");
      const response = JSON.parse(raw);
      await fs.rm(requestPath, { force: true });
      await fs.rm(responsePath, { force: true });
      if (response.success === false) {
        throw new Error("Tool call error: " + response.error);
      }
      cache[cacheKey] = response.result;
      await writeCache(cache);
      return response.result;
    } catch (err) {
      if (err instanceof Error && err.message.startsWith("Tool call error:")) throw err;
      // File missing or a partial write; keep polling.
    }
    await new Promise((resolve) => setTimeout(resolve, delay));
    delay = Math.min(delay * POLL_BACKOFF, POLL_CAP_MS);
  }
  await fs.rm(requestPath, { force: true });
  throw new Error("Tool request timeout waiting for \"" + tool + "\"");
}
`))

// mainTemplate renders main.<ext>: imports every stub, wraps the sanitized
// agent source in an async entry point, and prints the final or error
// sentinel on completion.
var mainTemplate = template.Must(template.New("main").Parse(`// Generated by the code assembler. Do not edit.
import { {{.ToolNames}} } from "./index";

async function __ptc_entry(): Promise<any> {
{{.Body}}
}

__ptc_entry()
  .then((result) => {
    console.log("{{.FinalSentinel}}" + JSON.stringify(result === undefined ? null : result));
  })
  .catch((err) => {
    const raw = err instanceof Error ? err.message : String(err);
    let message;
    if (raw.startsWith("Tool call error:")) {
      message = raw;
    } else if (raw.startsWith("Tool request timeout")) {
      message = "Tool request timeout: " + raw.slice("Tool request timeout".length).replace(/^[:\s]+/, "");
    } else {
      message = "Runtime error: " + raw;
    }
    console.log("{{.ErrorSentinel}}" + JSON.stringify({ message }));
    process.exitCode = 1;
  });
`))
