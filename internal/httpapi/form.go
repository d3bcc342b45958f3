package httpapi

const uploadFormHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>scribegate</title>
  <style>
    body { font-family: system-ui, sans-serif; max-width: 40rem; margin: 4rem auto; padding: 0 1rem; }
    form { display: flex; gap: 0.5rem; align-items: center; }
    button { padding: 0.4rem 1rem; }
  </style>
</head>
<body>
  <h1>Transcribe an audio or video file</h1>
  <p>Pick a file and submit it. You will be redirected to a page that
  refreshes until the transcript is ready.</p>
  <form action="/upload-file" method="post" enctype="multipart/form-data">
    <input type="file" name="file" required>
    <button type="submit">Transcribe</button>
  </form>
</body>
</html>
`
